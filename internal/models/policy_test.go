package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyTableInvariants(t *testing.T) {
	for _, category := range Categories() {
		policy, ok := PolicyFor(category)
		require.True(t, ok, "missing policy for %s", category)
		assert.Positive(t, policy.MaxBytes, "category %s", category)
		assert.NotEmpty(t, policy.AllowedMimeTypes, "category %s", category)
	}
}

func TestAvatarCeilingIsStrictest(t *testing.T) {
	avatar, _ := PolicyFor(FileCategoryAvatar)
	assert.Equal(t, int64(5*1024*1024), avatar.MaxBytes)

	for _, category := range Categories() {
		if category == FileCategoryAvatar {
			continue
		}
		policy, _ := PolicyFor(category)
		assert.GreaterOrEqual(t, policy.MaxBytes, avatar.MaxBytes, "category %s", category)
	}
}

func TestAllowsMime(t *testing.T) {
	tests := []struct {
		category FileCategory
		mimeType string
		allowed  bool
	}{
		{FileCategoryAvatar, "image/jpeg", true},
		{FileCategoryAvatar, "image/gif", false},
		{FileCategoryImage, "image/gif", true},
		{FileCategoryVideo, "video/mp4", true},
		{FileCategoryVideo, "application/pdf", false},
		{FileCategoryAudio, "audio/mpeg", true},
		{FileCategoryDocument, "application/pdf", true},
		{FileCategoryDocument, "application/x-executable", false},
	}

	for _, tt := range tests {
		policy, ok := PolicyFor(tt.category)
		require.True(t, ok)
		assert.Equal(t, tt.allowed, policy.AllowsMime(tt.mimeType), "%s / %s", tt.category, tt.mimeType)
	}
}

func TestParseFileCategory(t *testing.T) {
	for _, category := range Categories() {
		parsed, err := ParseFileCategory(string(category))
		require.NoError(t, err)
		assert.Equal(t, category, parsed)
	}

	_, err := ParseFileCategory("spreadsheet")
	assert.Error(t, err)
}

func TestCategoryFolders(t *testing.T) {
	assert.Equal(t, "avatars", FileCategoryAvatar.Folder())
	assert.Equal(t, "images", FileCategoryImage.Folder())
	assert.Equal(t, "videos", FileCategoryVideo.Folder())
	assert.Equal(t, "audio", FileCategoryAudio.Folder())
	assert.Equal(t, "documents", FileCategoryDocument.Folder())
}
