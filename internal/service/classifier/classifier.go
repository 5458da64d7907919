// Package classifier tags maintenance images with a lifecycle stage and
// groups them for display. Everything here is pure: no I/O, no clock reads.
package classifier

import (
	"sort"
	"strings"
	"time"

	"khrental/internal/domain"
	"khrental/internal/pkg/i18n"
)

// StageOrder is the fixed display order of image groups.
var StageOrder = []domain.ImageType{
	domain.ImageInitial,
	domain.ImageAdditional,
	domain.ImageProgress,
	domain.ImageCompletion,
}

var stageLabelKeys = map[domain.ImageType]string{
	domain.ImageInitial:    "STAGE_INITIAL",
	domain.ImageAdditional: "STAGE_ADDITIONAL",
	domain.ImageProgress:   "STAGE_PROGRESS",
	domain.ImageCompletion: "STAGE_COMPLETION",
}

type Group struct {
	Stage  domain.ImageType      `json:"stage"`
	Label  string                `json:"label"`
	Images []domain.RequestImage `json:"images"`
}

// Stage maps a stored image type onto one of the display stages. Missing or
// unknown types count as initial; general images are shown with the
// additional ones.
func Stage(t domain.ImageType) domain.ImageType {
	switch t {
	case domain.ImageInitial, domain.ImageAdditional, domain.ImageProgress, domain.ImageCompletion:
		return t
	case domain.ImageGeneral:
		return domain.ImageAdditional
	default:
		return domain.ImageInitial
	}
}

// Displayable reports whether the image has a URL that can be rendered.
func Displayable(img domain.RequestImage) bool {
	return strings.TrimSpace(img.ImageURL) != ""
}

// Normalize drops undisplayable images, fills defaults on copies and sorts by
// upload time. now stands in for a missing uploadedAt; the input slice and
// its records are left untouched.
func Normalize(images []domain.RequestImage, now time.Time) []domain.RequestImage {
	out := make([]domain.RequestImage, 0, len(images))
	for _, img := range images {
		if !Displayable(img) {
			continue
		}
		img.ImageType = Stage(img.ImageType)
		if img.UploadedAt == nil {
			t := now
			img.UploadedAt = &t
		} else {
			t := *img.UploadedAt
			img.UploadedAt = &t
		}
		out = append(out, img)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.UploadedAt.Equal(*b.UploadedAt) {
			return a.UploadedAt.Before(*b.UploadedAt)
		}
		if a.ImageURL != b.ImageURL {
			return a.ImageURL < b.ImageURL
		}
		return a.ID.String() < b.ID.String()
	})
	return out
}

// Organize groups a request's images by stage in StageOrder, leaving out
// stages that end up empty.
func Organize(images []domain.RequestImage, now time.Time) []Group {
	return OrganizeLocalized(images, now, i18n.DefaultLocale)
}

func OrganizeLocalized(images []domain.RequestImage, now time.Time, locale string) []Group {
	byStage := make(map[domain.ImageType][]domain.RequestImage, len(StageOrder))
	for _, img := range Normalize(images, now) {
		byStage[img.ImageType] = append(byStage[img.ImageType], img)
	}

	groups := make([]Group, 0, len(StageOrder))
	for _, stage := range StageOrder {
		members := byStage[stage]
		if len(members) == 0 {
			continue
		}
		groups = append(groups, Group{
			Stage:  stage,
			Label:  i18n.Translate(locale, stageLabelKeys[stage]),
			Images: members,
		})
	}
	return groups
}

// OfStage returns the displayable images of one stage in upload order.
func OfStage(images []domain.RequestImage, stage domain.ImageType, now time.Time) []domain.RequestImage {
	var out []domain.RequestImage
	for _, img := range Normalize(images, now) {
		if img.ImageType == stage {
			out = append(out, img)
		}
	}
	return out
}
