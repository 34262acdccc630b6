package chromium

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"

	"github.com/brogergvhs/crunchymanga/internal/providers"
)

func TestResolveBin(t *testing.T) {
	bin, err := ResolveBin("Edge", "/opt/custom/browser")
	assert.NoError(t, err)
	assert.Equal(t, "/opt/custom/browser", bin)

	_, err = ResolveBin("Firefox", "")
	assert.ErrorIs(t, err, providers.ErrUnsupportedBrowser)

	_, err = ResolveBin("Netscape", "")
	assert.ErrorIs(t, err, providers.ErrUnsupportedBrowser)
}

func TestKeysCoverProviderKeys(t *testing.T) {
	for _, k := range []providers.Key{providers.KeyHome} {
		_, ok := keys[k]
		assert.True(t, ok, k)
	}
}

func TestCookieHeader(t *testing.T) {
	assert.Empty(t, cookieHeader(nil))
	assert.Equal(t, "session_id=abc; etp_rt=x=y", cookieHeader([]*proto.NetworkCookie{
		{Name: "session_id", Value: "abc"},
		{Name: ""},
		{Name: "etp_rt", Value: "x=y"},
	}))
}
