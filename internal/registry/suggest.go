package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/vk/graphproc/internal/procerr"
)

// maxSuggestionDistance bounds how different a suggested name may be.
const maxSuggestionDistance = 3

func notFound(kind, name string, known []string) error {
	msg := fmt.Sprintf("There is no %s with the name `%s` registered for this database instance. "+
		"Please ensure you've spelled the %s name correctly and that the %s is properly deployed.",
		kind, name, kind, kind)
	if s := suggest(name, known); len(s) > 0 {
		msg += fmt.Sprintf(" Did you mean `%s`?", strings.Join(s, "`, `"))
	}
	return procerr.New(procerr.NotFound, "%s", msg)
}

func unknownID(kind string, id int) error {
	return procerr.New(procerr.NotFound,
		"There is no %s with the internal id `%d` registered for this database instance.", kind, id)
}

// suggest returns up to three known names closest to name.
func suggest(name string, known []string) []string {
	type candidate struct {
		name     string
		distance int
	}
	lower := strings.ToLower(name)
	var found []candidate
	for _, k := range known {
		d := levenshtein.Distance(lower, strings.ToLower(k), nil)
		if d <= maxSuggestionDistance {
			found = append(found, candidate{k, d})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].distance < found[j].distance })
	var out []string
	for i := 0; i < len(found) && i < 3; i++ {
		out = append(out, found[i].name)
	}
	return out
}
