package android

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testGradleTemplate = `apply plugin: 'com.android.library'
**APPLY_PLUGINS**

dependencies {
    implementation fileTree(dir: 'libs', include: ['*.jar'])
**DEPS**}

android {
    compileSdkVersion **APIVERSION**

    defaultConfig {
        minSdkVersion **MINSDKVERSION**
        targetSdkVersion **TARGETSDKVERSION**
    }
}
`

func TestReconcileGradleMultidex(t *testing.T) {
	var (
		ctx = context.Background()
		g   = ParseGradleTemplate(GradleTemplateName, []byte(testGradleTemplate))
	)

	assert.True(t, ReconcileGradleMultidex(ctx, g, true))
	assert.True(t, g.Contains(GradleMultidexDependency))
	assert.True(t, g.Contains(GradleMultidexEnabled))

	s := string(g.Bytes())
	assert.Contains(t, s, "    "+GradleMultidexDependency+"\n**DEPS**}")
	assert.Contains(t, s, "    defaultConfig {\n        "+GradleMultidexEnabled+"\n")

	enabled := s
	assert.False(t, ReconcileGradleMultidex(ctx, g, true))
	assert.Equal(t, enabled, string(g.Bytes()))

	assert.True(t, ReconcileGradleMultidex(ctx, g, false))
	assert.Equal(t, testGradleTemplate, string(g.Bytes()))
	assert.False(t, ReconcileGradleMultidex(ctx, g, false))
}

func TestReconcileGradleMultidexNoMarker(t *testing.T) {
	var (
		ctx = context.Background()
		g   = ParseGradleTemplate(GradleTemplateName, []byte("dependencies {\n}\n"))
	)

	assert.True(t, ReconcileGradleMultidex(ctx, g, true))
	assert.Equal(t, "dependencies {\n    "+GradleMultidexDependency+"\n}\n", string(g.Bytes()))
	assert.False(t, g.Contains(GradleMultidexEnabled))
}

func TestGradleTemplateCRLF(t *testing.T) {
	var (
		ctx = context.Background()
		g   = ParseGradleTemplate(GradleTemplateName, []byte(strings.ReplaceAll(testGradleTemplate, "\n", "\r\n")))
	)

	ReconcileGradleMultidex(ctx, g, true)

	s := string(g.Bytes())
	assert.NotContains(t, strings.ReplaceAll(s, "\r\n", ""), "\n")
	assert.Contains(t, s, GradleMultidexEnabled+"\r\n")
}
