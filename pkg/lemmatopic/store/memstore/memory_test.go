package memstore

import (
	"testing"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/store"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}
