package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBodyGalleryLegacyShape(t *testing.T) {
	body, err := DecodeBody(ContentTypeGallery, []byte(`{"imageUrl":"/uploads/a.jpg"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/a.jpg"}, body.(*GalleryBody).ImageURLs)

	body, err = DecodeBody(ContentTypeGallery, []byte(`{"imageUrls":["/uploads/b.jpg"],"imageUrl":"/uploads/a.jpg"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/b.jpg"}, body.(*GalleryBody).ImageURLs)
}

func TestDecodeBodyTyped(t *testing.T) {
	body, err := DecodeBody(ContentTypeAcademic, []byte(`{"contentFileUrl":"/uploads/x.pdf"}`))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/x.pdf", body.(*AcademicBody).ContentFileURL)

	body, err = DecodeBody("pages", nil)
	require.NoError(t, err)
	assert.Empty(t, *body.(*map[string]interface{}))
}

func TestDecodeBodyRejectsNonObjects(t *testing.T) {
	_, err := DecodeBody(ContentTypeArticle, []byte(`"text"`))
	assert.Error(t, err)
	_, err = DecodeBody("pages", []byte(`[1,2]`))
	assert.Error(t, err)
	_, err = DecodeBody(ContentTypeGallery, []byte(`{"imageUrls":"nope"}`))
	assert.Error(t, err)
}
