package courses

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/seplitza/rejuvena-gateway/internal/htmlclean"
	"github.com/seplitza/rejuvena-gateway/internal/videoembed"
	"github.com/seplitza/rejuvena-gateway/pkg"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

// Course is one catalog entry, as authored in the catalog asset file.
type Course struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	// Description is the short plain-text teaser shown on the card,
	// CourseDescription the full rich-text HTML shown in the detail view.
	Description       string   `json:"description"`
	CourseDescription string   `json:"courseDescription,omitempty"`
	CallToAction      string   `json:"callToAction,omitempty"`
	PriceFrom         int      `json:"priceFrom,omitempty"`
	Currency          string   `json:"currency,omitempty"`
	ImageURL          string   `json:"imageUrl,omitempty"`
	VideoURL          string   `json:"videoUrl,omitempty"`
	Duration          int      `json:"duration,omitempty"`
	Level             string   `json:"level,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	IsFree            bool     `json:"isFree,omitempty"`
	IsDemo            bool     `json:"isDemo,omitempty"`
}

// Detail is the rendered detail view of a course: sanitized description,
// distilled bullet points and a normalized video embed.
type Detail struct {
	Course
	CleanedDescription string          `json:"cleanedDescription"`
	BulletPoints       []string        `json:"bulletPoints"`
	VideoEmbed         videoembed.Embed `json:"videoEmbed"`
}

// Catalog serves the course list and per-course detail views. The catalog
// itself is a local asset; rendered details are kept in an in-process cache
// since the HTML cleanup and bullet extraction are pure functions of it.
type Catalog struct {
	courses     []Course
	coursesByID map[string]*Course
	cache       *freecache.Cache
	cacheExpire int
}

// NewCatalog builds a catalog from already-decoded course data.
func NewCatalog(courses []Course, cacheSizeMegabytes, cacheExpireSeconds int) *Catalog {
	megabyte := 1024 * 1024
	catalog := &Catalog{
		courses:     courses,
		coursesByID: make(map[string]*Course, len(courses)),
		cache:       freecache.NewCache(cacheSizeMegabytes * megabyte),
		cacheExpire: cacheExpireSeconds,
	}
	for i := range courses {
		catalog.coursesByID[courses[i].ID] = &courses[i]
	}

	log.Debugf("course catalog loaded: %d courses", len(courses))
	return catalog
}

// LoadCatalog reads the catalog asset file and builds the catalog from it.
func LoadCatalog(path string, cacheSizeMegabytes, cacheExpireSeconds int) (*Catalog, error) {
	exists, err := pkg.PathExists(path, false)
	if err != nil {
		return nil, fmt.Errorf("check catalog file: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("catalog file %s not found", path)
	}

	catalogBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var courses []Course
	if err := json.Unmarshal(catalogBytes, &courses); err != nil {
		return nil, fmt.Errorf("unmarshal catalog file: %w", err)
	}

	return NewCatalog(courses, cacheSizeMegabytes, cacheExpireSeconds), nil
}

// Courses returns all catalog entries in their authored order.
func (c *Catalog) Courses() []Course {
	return c.courses
}

// CourseDuration resolves a course's duration in days; 0 for unknown courses.
func (c *Catalog) CourseDuration(courseID string) int {
	if course, ok := c.coursesByID[courseID]; ok {
		return course.Duration
	}
	return 0
}

// Detail renders the detail view of one course; false when the id is unknown.
func (c *Catalog) Detail(courseID string) (*Detail, bool) {
	cacheKey := []byte("detail::" + courseID)
	if detailBytes, err := c.cache.Get(cacheKey); err == nil {
		var detail Detail
		if err := json.Unmarshal(detailBytes, &detail); err == nil {
			return &detail, true
		}
		log.Errorf("failed to unmarshal cached detail for course %s, re-rendering", courseID)
	}

	course, ok := c.coursesByID[courseID]
	if !ok {
		return nil, false
	}

	description := course.CourseDescription
	if description == "" {
		description = course.Description
	}

	detail := &Detail{
		Course:             *course,
		CleanedDescription: htmlclean.CleanDescription(description),
		BulletPoints:       htmlclean.ExtractBulletPoints(description, course.Duration),
		VideoEmbed:         videoembed.EmbedURL(course.VideoURL),
	}

	if detailBytes, err := json.Marshal(detail); err == nil {
		if err := c.cache.Set(cacheKey, detailBytes, c.cacheExpire); err != nil {
			log.Errorf("failed to cache detail for course %s: %s", courseID, err)
		}
	}

	return detail, true
}

// FindByTag returns courses carrying the tag, for the catalog filter chips.
func (c *Catalog) FindByTag(tag string) []Course {
	var matched []Course
	for _, course := range c.courses {
		for _, t := range course.Tags {
			if strings.EqualFold(t, tag) {
				matched = append(matched, course)
				break
			}
		}
	}
	return matched
}
