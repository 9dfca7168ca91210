package adpatch_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/frantjc/adpatch"
	"github.com/stretchr/testify/assert"
)

func TestFatal(t *testing.T) {
	assert.Nil(t, adpatch.Fatal(nil))

	var (
		nferr = &adpatch.NotFoundError{Path: "Info.plist"}
		err   = fmt.Errorf("ios-info-plist: %w", adpatch.Fatal(nferr))
	)

	assert.True(t, adpatch.IsFatal(err))
	assert.True(t, adpatch.IsNotFound(err))
	assert.False(t, adpatch.IsParse(err))
	assert.Equal(t, "ios-info-plist: Info.plist not found", err.Error())

	assert.False(t, adpatch.IsFatal(nferr))
}

func TestParseError(t *testing.T) {
	var (
		cause = errors.New("unexpected EOF")
		err   = &adpatch.ParseError{Path: "AndroidManifest.xml", Err: cause}
	)

	assert.ErrorIs(t, err, cause)
	assert.True(t, adpatch.IsParse(err))
	assert.Equal(t, "parse AndroidManifest.xml: unexpected EOF", err.Error())
}
