package board

import (
	"github.com/rogersnm/kanban/internal/model"
)

// CreateBucket appends a bucket and returns it with its token. Names are not
// checked for collisions; GetBucketConfig resolves to the first match.
func (s *Store) CreateBucket(name, token string) (model.Bucket, string) {
	b := model.Bucket{Name: name, Token: token}
	s.update("createBucket", func(st *Snapshot) bool {
		buckets := make([]model.Bucket, 0, len(st.Buckets)+1)
		buckets = append(buckets, st.Buckets...)
		st.Buckets = append(buckets, b)
		st.Error = ""
		return true
	})
	return b, token
}

// GetBucketConfig returns the first bucket named name.
func (s *Store) GetBucketConfig(name string) (model.Bucket, bool) {
	return findBucket(s.State().Buckets, name)
}

func findBucket(buckets []model.Bucket, name string) (model.Bucket, bool) {
	for _, b := range buckets {
		if b.Name == name {
			return b, true
		}
	}
	return model.Bucket{}, false
}
