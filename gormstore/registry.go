package gormstore

import (
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// DialectorOpener is an alias for a function that returns a gorm.Dialector
// for a given DSN.
type DialectorOpener = func(string) gorm.Dialector

var (
	registryMu sync.RWMutex
	providers  = make(map[string]DialectorOpener)
)

// Register adds a new database dialector to the registry. The sqlite,
// postgres and mysql dialectors are registered by default.
func Register(name string, opener DialectorOpener) {
	registryMu.Lock()
	defer registryMu.Unlock()
	providers[name] = opener
}

// NewStorage opens a database using the registered dialector name and returns
// a Repository over it. extra may carry a *gorm.Config; error translation is
// always enabled so the repository can map driver errors onto the domain
// sentinels. Migration is left to the caller.
func NewStorage(name string, dsn string, extra any) (*Repository, error) {
	registryMu.RLock()
	opener, ok := providers[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("gormstore: unknown storage provider %q", name)
	}

	gormConfig, _ := extra.(*gorm.Config)
	if gormConfig == nil {
		gormConfig = &gorm.Config{}
	}
	gormConfig.TranslateError = true

	db, err := gorm.Open(opener(dsn), gormConfig)
	if err != nil {
		return nil, err
	}

	return NewRepository(db), nil
}
