package classifier_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khrental/internal/domain"
	"khrental/internal/service/classifier"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) *time.Time {
	t := now.Add(time.Duration(minutes) * time.Minute)
	return &t
}

func image(url string, typ domain.ImageType, uploaded *time.Time) domain.RequestImage {
	return domain.RequestImage{ID: uuid.New(), ImageURL: url, ImageType: typ, UploadedAt: uploaded}
}

func TestOrganize_OneGroupPerStage(t *testing.T) {
	images := []domain.RequestImage{
		image("https://cdn/c.jpg", domain.ImageCompletion, at(-1)),
		image("", domain.ImageInitial, at(-30)),
		image("https://cdn/p.jpg", domain.ImageProgress, at(-10)),
		image("https://cdn/i.jpg", domain.ImageInitial, at(-20)),
	}

	groups := classifier.Organize(images, now)

	require.Len(t, groups, 3)
	assert.Equal(t, domain.ImageInitial, groups[0].Stage)
	assert.Equal(t, domain.ImageProgress, groups[1].Stage)
	assert.Equal(t, domain.ImageCompletion, groups[2].Stage)
	for _, g := range groups {
		require.Len(t, g.Images, 1)
		assert.NotEmpty(t, g.Images[0].ImageURL)
	}
	assert.Equal(t, "Initial Report", groups[0].Label)
}

func TestOrganize_Defaults(t *testing.T) {
	noType := image("https://cdn/a.jpg", "", nil)
	general := image("https://cdn/b.jpg", domain.ImageGeneral, at(-5))
	unknown := image("https://cdn/c.jpg", "blueprint", at(-50))
	blank := image("   ", domain.ImageProgress, at(-1))

	groups := classifier.Organize([]domain.RequestImage{noType, general, unknown, blank}, now)

	require.Len(t, groups, 2)
	assert.Equal(t, domain.ImageInitial, groups[0].Stage)
	require.Len(t, groups[0].Images, 2)
	assert.Equal(t, "https://cdn/c.jpg", groups[0].Images[0].ImageURL)
	assert.Equal(t, "https://cdn/a.jpg", groups[0].Images[1].ImageURL)
	assert.Equal(t, now, *groups[0].Images[1].UploadedAt)

	assert.Equal(t, domain.ImageAdditional, groups[1].Stage)
	assert.Equal(t, "https://cdn/b.jpg", groups[1].Images[0].ImageURL)

	assert.Nil(t, noType.UploadedAt, "input record must not be mutated")
	assert.Equal(t, domain.ImageType(""), noType.ImageType)
}

func TestOrganize_StageOrderAndUploadOrder(t *testing.T) {
	images := []domain.RequestImage{
		image("https://cdn/done.jpg", domain.ImageCompletion, at(-1)),
		image("https://cdn/extra-2.jpg", domain.ImageAdditional, at(-3)),
		image("https://cdn/extra-1.jpg", domain.ImageAdditional, at(-40)),
		image("https://cdn/first.jpg", domain.ImageInitial, at(-60)),
	}

	groups := classifier.Organize(images, now)

	require.Len(t, groups, 3)
	assert.Equal(t, []domain.ImageType{domain.ImageInitial, domain.ImageAdditional, domain.ImageCompletion},
		[]domain.ImageType{groups[0].Stage, groups[1].Stage, groups[2].Stage})
	assert.Equal(t, "https://cdn/extra-1.jpg", groups[1].Images[0].ImageURL)
	assert.Equal(t, "https://cdn/extra-2.jpg", groups[1].Images[1].ImageURL)
}

func TestOrganize_PureAndOrderIndependent(t *testing.T) {
	a := image("https://cdn/a.jpg", domain.ImageProgress, at(-5))
	b := image("https://cdn/b.jpg", domain.ImageProgress, at(-5))
	c := image("https://cdn/c.jpg", domain.ImageInitial, at(-9))

	first := classifier.Organize([]domain.RequestImage{a, b, c}, now)
	second := classifier.Organize([]domain.RequestImage{c, b, a}, now)
	again := classifier.Organize([]domain.RequestImage{a, b, c}, now)

	assert.Equal(t, first, second)
	assert.Equal(t, first, again)
}

func TestOrganize_Empty(t *testing.T) {
	assert.Empty(t, classifier.Organize(nil, now))
	assert.Empty(t, classifier.Organize([]domain.RequestImage{image("", domain.ImageInitial, nil)}, now))
}

func TestOrganizeLocalized(t *testing.T) {
	groups := classifier.OrganizeLocalized([]domain.RequestImage{
		image("https://cdn/a.jpg", domain.ImageCompletion, nil),
	}, now, "id")

	require.Len(t, groups, 1)
	assert.NotEqual(t, "STAGE_COMPLETION", groups[0].Label)
}

func TestOfStage(t *testing.T) {
	images := []domain.RequestImage{
		image("https://cdn/c2.jpg", domain.ImageCompletion, at(-1)),
		image("https://cdn/c1.jpg", domain.ImageCompletion, at(-2)),
		image("https://cdn/p.jpg", domain.ImageProgress, at(-3)),
	}

	got := classifier.OfStage(images, domain.ImageCompletion, now)

	require.Len(t, got, 2)
	assert.Equal(t, "https://cdn/c1.jpg", got[0].ImageURL)
}
