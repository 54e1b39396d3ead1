// Package cache holds large objects we don't want to build more than once
// per process: loaded wordlists, and the opening guess of a strategy over a
// fixed pair of wordlists.
package cache

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/wordlebot/config"
)

type entry struct {
	once sync.Once
	obj  any
	err  error
}

type cache struct {
	sync.Mutex
	objects map[string]*entry
}

type loadFunc func(cfg *config.Config, key string) (any, error)

// GlobalObjectCache is our global object cache, of course.
var GlobalObjectCache *cache

var createOnce sync.Once

// get loads the object at most once per key. The lock only guards the map,
// so a slow load does not hold up other keys, and a loader may itself
// read other keys from the cache.
func (c *cache) get(cfg *config.Config, key string, load loadFunc) (any, error) {
	c.Lock()
	e, ok := c.objects[key]
	if !ok {
		e = &entry{}
		c.objects[key] = e
	}
	c.Unlock()

	if ok {
		log.Debug().Str("key", key).Msg("getting obj from cache")
	}
	e.once.Do(func() {
		log.Debug().Str("key", key).Msg("loading into cache")
		e.obj, e.err = load(cfg, key)
	})
	if e.err != nil {
		// Don't remember failures; the next caller gets to try again.
		c.Lock()
		if c.objects[key] == e {
			delete(c.objects, key)
		}
		c.Unlock()
		return nil, e.err
	}
	return e.obj, nil
}

func (c *cache) evict(key string) {
	c.Lock()
	defer c.Unlock()
	delete(c.objects, key)
}

func CreateGlobalObjectCache() {
	createOnce.Do(func() {
		GlobalObjectCache = &cache{objects: make(map[string]*entry)}
	})
}

// Load returns the object cached under name, calling load to build it if
// it isn't there yet.
func Load(cfg *config.Config, name string, load loadFunc) (any, error) {
	CreateGlobalObjectCache()
	return GlobalObjectCache.get(cfg, name, load)
}

// Evict forgets the object cached under name.
func Evict(name string) {
	CreateGlobalObjectCache()
	GlobalObjectCache.evict(name)
}
