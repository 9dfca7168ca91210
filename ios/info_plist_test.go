package ios

import (
	_ "embed"
	"path/filepath"
	"testing"

	"github.com/frantjc/adpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"howett.net/plist"
)

var (
	//go:embed testdata/Info.plist
	data []byte
)

const testAppID = "ca-app-pub-3940256099942544~1458002511"

func newTestInfoPlist(t *testing.T) *InfoPlist {
	t.Helper()

	p, err := ParseInfoPlist(InfoPlistName, data)
	require.NoError(t, err)

	return p
}

func TestParseInfoPlist(t *testing.T) {
	p := newTestInfoPlist(t)

	id, ok := p.Root.GetString("CFBundleIdentifier")
	assert.True(t, ok)
	assert.Equal(t, "com.appodeal.example", id)

	ids, err := SKAdNetworkIdentifiers(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.skadnetwork", "c.skadnetwork"}, ids)
}

func TestParseInfoPlistMalformed(t *testing.T) {
	_, err := ParseInfoPlist(InfoPlistName, []byte(`<plist><dict><key>a</key>`))
	assert.True(t, adpatch.IsParse(err))
}

func TestOpenInfoPlistNotFound(t *testing.T) {
	_, err := OpenInfoPlist(filepath.Join(t.TempDir(), InfoPlistName))
	assert.True(t, adpatch.IsNotFound(err))
}

func TestInfoPlistBytesKeepsFormat(t *testing.T) {
	b, err := plist.Marshal(map[string]any{"CFBundleName": "Example"}, plist.BinaryFormat)
	require.NoError(t, err)

	p, err := ParseInfoPlist(InfoPlistName, b)
	require.NoError(t, err)

	out, err := p.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "bplist", string(out[:6]))
}

func TestInfoPlistSave(t *testing.T) {
	var (
		name = filepath.Join(t.TempDir(), InfoPlistName)
		p    = newTestInfoPlist(t)
	)

	p.Name = name
	p.Root.SetString(KeyGADApplicationIdentifier, testAppID)
	require.NoError(t, p.Save())

	saved, err := OpenInfoPlist(name)
	require.NoError(t, err)

	id, _ := saved.Root.GetString(KeyGADApplicationIdentifier)
	assert.Equal(t, testAppID, id)
}

func TestDictArray(t *testing.T) {
	d := Dict{"a": []any{"x"}, "s": "y"}

	a, ok, err := d.Array("a")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []any{"x"}, a)

	_, ok, err = d.Array("missing")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = d.Array("s")
	assert.Error(t, err)
	assert.True(t, ok)
}
