// Package compare implements the comparator library. Comparators operate on
// already-normalized string values; parameter validity is enforced when the
// rule snapshot loads, so errors here mean unparseable input values.
package compare

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"securedeal/internal/validation/models"
)

// Result is the outcome of a single comparison.
type Result struct {
	Outcome    models.Outcome
	Similarity *float64
	Message    string
}

func match() Result    { return Result{Outcome: models.OutcomeMatch} }
func mismatch() Result { return Result{Outcome: models.OutcomeMismatch} }

// Compare applies the configured comparator to the normalized source and
// target values. A non-nil error means the values could not be interpreted
// for this comparator (bad number, bad date); callers record it as ERROR.
func Compare(c models.Comparison, source, target string) (Result, error) {
	switch c.Type {
	case models.CompareExact:
		return exact(c, source, target), nil
	case models.CompareFuzzy:
		return fuzzy(c, source, target), nil
	case models.CompareContains:
		return contains(c, source, target), nil
	case models.CompareRegex:
		return matchRegex(c, source)
	case models.CompareNumericTolerance:
		return numericTolerance(c, source, target)
	case models.CompareDateTolerance:
		return dateTolerance(c, source, target)
	case models.CompareExists:
		if source != "" {
			return match(), nil
		}
		return mismatch(), nil
	case models.CompareNotExists:
		if source == "" {
			return match(), nil
		}
		return Result{Outcome: models.OutcomeMismatch, Message: "value present"}, nil
	case models.CompareInList:
		return inList(c, source), nil
	default:
		return Result{}, fmt.Errorf("unknown comparison type %q", c.Type)
	}
}

func fold(c models.Comparison, s string) string {
	if c.CaseSensitive {
		return s
	}
	return strings.ToLower(s)
}

func exact(c models.Comparison, source, target string) Result {
	if fold(c, source) == fold(c, target) {
		return match()
	}
	return Result{
		Outcome: models.OutcomeMismatch,
		Message: fmt.Sprintf("%q != %q", source, target),
	}
}

func fuzzy(c models.Comparison, source, target string) Result {
	sim := Similarity(fold(c, source), fold(c, target))
	r := Result{Similarity: &sim}
	if sim >= c.Threshold {
		r.Outcome = models.OutcomeMatch
	} else {
		r.Outcome = models.OutcomeMismatch
		r.Message = fmt.Sprintf("similarity %.2f below threshold %.2f", sim, c.Threshold)
	}
	return r
}

func contains(c models.Comparison, source, target string) Result {
	if strings.Contains(fold(c, source), fold(c, target)) {
		return match()
	}
	return Result{
		Outcome: models.OutcomeMismatch,
		Message: fmt.Sprintf("%q does not contain %q", source, target),
	}
}

func matchRegex(c models.Comparison, source string) (Result, error) {
	re, err := regexp.Compile(c.Pattern)
	if err != nil {
		return Result{}, fmt.Errorf("compile pattern: %w", err)
	}
	if re.MatchString(source) {
		return match(), nil
	}
	return Result{
		Outcome: models.OutcomeMismatch,
		Message: fmt.Sprintf("%q does not match pattern", source),
	}, nil
}

func numericTolerance(c models.Comparison, source, target string) (Result, error) {
	a, err := strconv.ParseFloat(strings.TrimSpace(source), 64)
	if err != nil {
		return Result{}, fmt.Errorf("parse source %q: %w", source, err)
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(target), 64)
	if err != nil {
		return Result{}, fmt.Errorf("parse target %q: %w", target, err)
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	limit := c.Tolerance
	if c.ToleranceMode == models.TolerancePercentage {
		ref := b
		if ref < 0 {
			ref = -ref
		}
		limit = c.Tolerance / 100 * ref
	}
	if diff <= limit {
		return match(), nil
	}
	return Result{
		Outcome: models.OutcomeMismatch,
		Message: fmt.Sprintf("difference %g exceeds tolerance %g", diff, limit),
	}, nil
}

const dayLayout = "2006-01-02"

func dateTolerance(c models.Comparison, source, target string) (Result, error) {
	a, err := time.Parse(dayLayout, strings.TrimSpace(source))
	if err != nil {
		return Result{}, fmt.Errorf("parse source date %q: %w", source, err)
	}
	b, err := time.Parse(dayLayout, strings.TrimSpace(target))
	if err != nil {
		return Result{}, fmt.Errorf("parse target date %q: %w", target, err)
	}
	days := int(a.Sub(b).Hours() / 24)
	tol := int(c.Tolerance)

	switch c.Direction {
	case models.DateMinDaysBefore:
		// source must precede target by at least the tolerance
		if -days >= tol {
			return match(), nil
		}
		return Result{
			Outcome: models.OutcomeMismatch,
			Message: fmt.Sprintf("%s is not at least %d days before %s", source, tol, target),
		}, nil
	case models.DateMaxDaysAfter:
		if days <= tol {
			return match(), nil
		}
		return Result{
			Outcome: models.OutcomeMismatch,
			Message: fmt.Sprintf("%s is more than %d days after %s", source, tol, target),
		}, nil
	default: // WITHIN_RANGE
		if days < 0 {
			days = -days
		}
		if days <= tol {
			return match(), nil
		}
		return Result{
			Outcome: models.OutcomeMismatch,
			Message: fmt.Sprintf("dates differ by %d days, tolerance %d", days, tol),
		}, nil
	}
}

func inList(c models.Comparison, source string) Result {
	for _, v := range c.AllowedValues {
		if fold(c, source) == fold(c, v) {
			return match()
		}
	}
	return Result{
		Outcome: models.OutcomeMismatch,
		Message: fmt.Sprintf("%q not in allowed values", source),
	}
}
