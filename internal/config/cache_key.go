package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AssessmentQuestionsKey returns the cache key for an assessment's generated
// question set. Overwritten wholesale on each write, no schema versioning.
func (r *CacheKeyStruct) AssessmentQuestionsKey(assessmentID string) string {
	return fmt.Sprintf("assessment:%s:questions", assessmentID)
}

// AssessmentSubmissionKey returns the cache key for the last full submission
// record of an assessment.
func (r *CacheKeyStruct) AssessmentSubmissionKey(assessmentID string) string {
	return fmt.Sprintf("assessment:%s:submission", assessmentID)
}

var CacheKey = NewCacheKeyStruct()
