// Command suggest is a terminal typeahead: every stdin line replaces the
// current input, and artist suggestions are printed once typing settles.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"tour_map/internal/adapters/observability"
	"tour_map/internal/adapters/tourapi"
	"tour_map/internal/shared"
	"tour_map/internal/typeahead"
)

func main() {
	cfg := shared.MustLoad()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	client := tourapi.New(cfg.APIBaseURL)
	sess := typeahead.New(cfg.SuggestDebounce, client.ArtistSuggestions, func(r typeahead.Result) {
		if r.Err != nil {
			log.Warn().Err(r.Err).Str("keyword", r.Keyword).Msg("lookup failed")
			return
		}
		fmt.Printf("[%d] %q\n", r.Seq, r.Keyword)
		for _, s := range r.Suggestions {
			fmt.Printf("  %s  (%s)\n", s.Name, s.ID)
		}
	})
	defer sess.Close()

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		sess.Input(sc.Text())
	}
	if err := sc.Err(); err != nil {
		log.Error().Err(err).Msg("read stdin")
	}
	// end of input settles the last line instead of dropping it
	sess.Flush()
}
