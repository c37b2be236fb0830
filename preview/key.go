package preview

import "github.com/jonwraymond/qrpreview/cache"

var defaultKeyer = cache.NewDefaultKeyer(cache.DefaultNamespace)

// BuildKey returns the cache key for content rendered with opts under the
// default namespace. Options are serialized by Canonical, so any two raw
// option sets that normalize equally share a key.
func BuildKey(content string, opts RenderOptions) cache.Key {
	return defaultKeyer.Key(content, opts.Canonical())
}
