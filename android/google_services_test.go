package android

import (
	_ "embed"
	"testing"

	"github.com/beevik/etree"
	"github.com/frantjc/adpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	//go:embed testdata/google-services.json
	googleServicesData []byte
)

func newTestGoogleServices(t *testing.T) *GoogleServices {
	t.Helper()

	gs, err := ParseGoogleServices(GoogleServicesJSONName, googleServicesData)
	require.NoError(t, err)

	return gs
}

func TestGoogleServicesClient(t *testing.T) {
	gs := newTestGoogleServices(t)

	client := gs.Client("")
	require.NotNil(t, client)
	assert.Equal(t, "com.appodeal.other", client.ClientInfo.AndroidClientInfo.PackageName)

	client = gs.Client("com.appodeal.example")
	require.NotNil(t, client)
	assert.Equal(t, "1:123456789012:android:1111111111111111", client.ClientInfo.MobileSDKAppID)

	assert.Nil(t, gs.Client("com.appodeal.missing"))
}

func TestGoogleServicesValues(t *testing.T) {
	gs := newTestGoogleServices(t)

	assert.Equal(t, [][2]string{
		{"gcm_defaultSenderId", "123456789012"},
		{"firebase_database_url", "https://adpatch-example.firebaseio.com"},
		{"project_id", "adpatch-example"},
		{"google_storage_bucket", "adpatch-example.appspot.com"},
		{"google_app_id", "1:123456789012:android:1111111111111111"},
		{"default_web_client_id", "web.apps.googleusercontent.com"},
		{"google_api_key", "AIzaExample"},
		{"google_crash_reporting_api_key", "AIzaExample"},
	}, gs.Values(gs.Client("com.appodeal.example")))

	values := gs.Values(gs.Client(""))
	for _, kv := range values {
		assert.NotEqual(t, "default_web_client_id", kv[0])
	}
}

func TestGoogleServicesXML(t *testing.T) {
	gs := newTestGoogleServices(t)

	b, err := GoogleServicesXML(gs.Values(gs.Client("com.appodeal.example")))
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(b))

	el := doc.FindElement(`//string[@name='google_app_id']`)
	require.NotNil(t, el)
	assert.Equal(t, "1:123456789012:android:1111111111111111", el.Text())
	assert.Equal(t, "false", el.SelectAttrValue("translatable", ""))
	assert.Len(t, doc.FindElements("//string"), 8)

	again, err := GoogleServicesXML(gs.Values(gs.Client("com.appodeal.example")))
	require.NoError(t, err)
	assert.Equal(t, string(b), string(again))
}

func TestParseGoogleServicesMalformed(t *testing.T) {
	for _, b := range []string{"{", `{"client": []}`} {
		_, err := ParseGoogleServices(GoogleServicesJSONName, []byte(b))
		assert.True(t, adpatch.IsParse(err), b)
	}
}
