package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TemplateOptionsKey returns the cache key for a user's template name options
func (r *CacheKeyStruct) TemplateOptionsKey(userID string) string {
	return fmt.Sprintf("user:%s:template_options", userID)
}

var CacheKey = NewCacheKeyStruct()
