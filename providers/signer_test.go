package providers_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/providers"
)

func TestSign_Deterministic(t *testing.T) {
	signer := providers.NewHMACSigner("secret")
	params := url.Values{}
	params.Set("app_key", "k1")
	params.Set("timestamp", "1700000000000")

	first := signer.Sign(params)
	second := signer.Sign(params)

	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
	// HMAC-SHA256 in uppercase hex
	assert.Len(t, first, 64)
	assert.Equal(t, first, strings.ToUpper(first))
}

func TestSign_InsertionOrderIndependent(t *testing.T) {
	signer := providers.NewHMACSigner("secret")

	a := url.Values{}
	a.Set("app_key", "k1")
	a.Set("page", "2")
	a.Set("keyword", "hub")

	b := url.Values{}
	b.Set("keyword", "hub")
	b.Set("app_key", "k1")
	b.Set("page", "2")

	assert.Equal(t, signer.Sign(a), signer.Sign(b))
}

func TestSign_SensitiveToValuesAndSecret(t *testing.T) {
	params := url.Values{}
	params.Set("app_key", "k1")
	params.Set("page", "1")

	base := providers.NewHMACSigner("secret").Sign(params)

	changed := url.Values{}
	changed.Set("app_key", "k1")
	changed.Set("page", "2")
	assert.NotEqual(t, base, providers.NewHMACSigner("secret").Sign(changed))

	assert.NotEqual(t, base, providers.NewHMACSigner("other").Sign(params))
}
