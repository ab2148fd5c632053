package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CandidateSessionKey returns the cache key for a candidate's login session.
func (r *CacheKeyStruct) CandidateSessionKey(candidateID int) string {
	return fmt.Sprintf("login:%d", candidateID)
}

// SubmissionStartKey returns the cache key for a submission's start timestamp.
func (r *CacheKeyStruct) SubmissionStartKey(submissionID string) string {
	return fmt.Sprintf("submission:%s:started_at", submissionID)
}

var CacheKey = NewCacheKeyStruct()
