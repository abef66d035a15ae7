package common

import (
	"fmt"
	"regexp"
	"time"

	"github.com/araddon/dateparse"
)

// DateToday is the date argument meaning "the current calendar date".
const DateToday = "TODAY"

// DateLayout formats dates in post filenames and remote folder names.
const DateLayout = "2006-01-02"

// TitlePolicy selects which characters a post title may contain.
type TitlePolicy string

const (
	// TitleMixedCase allows ASCII letters of both cases, digits and dashes.
	TitleMixedCase TitlePolicy = "mixed-case"
	// TitleLowercase allows lowercase ASCII letters, digits and dashes.
	TitleLowercase TitlePolicy = "lowercase"
)

var titlePatterns = map[TitlePolicy]*regexp.Regexp{
	TitleMixedCase: regexp.MustCompile(`^[A-Za-z0-9-]*$`),
	TitleLowercase: regexp.MustCompile(`^[a-z0-9-]*$`),
}

// ParseTitlePolicy converts a policy name from config or flags.
func ParseTitlePolicy(s string) (TitlePolicy, error) {
	p := TitlePolicy(s)
	if _, ok := titlePatterns[p]; !ok {
		return "", fmt.Errorf("unknown title policy %q (want %q or %q)", s, TitleMixedCase, TitleLowercase)
	}
	return p, nil
}

// PostRequest is a validated request to create one post.
type PostRequest struct {
	Date           time.Time
	Title          string
	PhotoSourceDir string
	Narrow         bool
}

// DateString returns the request date as YYYY-MM-DD.
func (r PostRequest) DateString() string {
	return r.Date.Format(DateLayout)
}

// Slug returns "{date}-{title}", shared by the post filename and the
// remote photo folder.
func (r PostRequest) Slug() string {
	return r.DateString() + "-" + r.Title
}

// ParseDate resolves the date argument. DateToday yields the calendar date
// of now; anything else goes through a lenient human-date parser.
func ParseDate(raw string, now time.Time) (time.Time, error) {
	if raw == DateToday {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	}

	date, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, raw, err)
	}
	return date, nil
}

// ValidateTitle checks that title is non-empty and only uses the
// characters allowed by policy.
func ValidateTitle(title string, policy TitlePolicy) error {
	pattern, ok := titlePatterns[policy]
	if !ok {
		return fmt.Errorf("%w: unknown title policy %q", ErrInvalidTitle, policy)
	}
	if title == "" {
		return fmt.Errorf("%w: title is empty", ErrInvalidTitle)
	}
	if !pattern.MatchString(title) {
		return fmt.Errorf("%w %q: only %s are allowed", ErrInvalidTitle, title, policy.describe())
	}
	return nil
}

func (p TitlePolicy) describe() string {
	if p == TitleLowercase {
		return "lowercase letters, digits and dashes"
	}
	return "letters, digits and dashes"
}

// NewPostRequest validates the raw CLI input and builds a PostRequest.
// Validation errors are returned for the caller to report, not logged.
func NewPostRequest(rawDate, title, photoDir string, narrow bool, policy TitlePolicy, now time.Time) (PostRequest, error) {
	log := Logger()

	date, err := ParseDate(rawDate, now)
	if err != nil {
		return PostRequest{}, fmt.Errorf("%w; please specify the date of the post as YYYY-MM-DD", err)
	}
	if rawDate == DateToday {
		log.Info().Msgf("Setting date to today: %s", date.Format(DateLayout))
	} else {
		log.Info().Msgf("Setting date to %s", date.Format(DateLayout))
	}

	log.Debug().Str("policy", string(policy)).Msg("validating title")
	if err := ValidateTitle(title, policy); err != nil {
		return PostRequest{}, err
	}

	if narrow {
		log.Warn().Msg("Narrow images are not implemented yet; using full-width images")
	}

	return PostRequest{
		Date:           date,
		Title:          title,
		PhotoSourceDir: photoDir,
		Narrow:         narrow,
	}, nil
}
