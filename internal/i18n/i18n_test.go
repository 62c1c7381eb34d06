// internal/i18n/i18n_test.go
package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslations(t *testing.T) {
	require.NoError(t, Initialize("en"))

	assert.Equal(t, "House item not found", T("en", KeyHouseItemNotFound))
	assert.Equal(t, "Artículo no encontrado", T("es", KeyHouseItemNotFound))
	assert.Equal(t, "House item not found", T("fr", KeyHouseItemNotFound))
	assert.Equal(t, "Vendor selection not found", T("en", KeyResourceNotFound, T("en", KeyResourceVendorSelection)))
	assert.Equal(t, "missing.key", T("es", "missing.key"))

	assert.Equal(t, []string{"en", "es"}, GetSupportedLanguages())
	assert.True(t, IsSupported("es"))
	assert.False(t, IsSupported("zh_TW"))
}

func TestLocalesShareKeys(t *testing.T) {
	i := &I18n{translations: make(map[string]map[string]string), defaultLang: "en"}
	require.NoError(t, i.LoadTranslations())

	for key := range i.translations["en"] {
		_, ok := i.translations["es"][key]
		assert.True(t, ok, "es locale is missing %s", key)
	}
}
