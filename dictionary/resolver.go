package dictionary

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/wickedwords/word-chain-bot/language"
	"github.com/wickedwords/word-chain-bot/logging"
	"github.com/wickedwords/word-chain-bot/metrics"
)

// Resolution aggregates the per-language lookups for one word.
type Resolution struct {
	Result LookupResult
	// Languages holds the languages whose dictionaries confirmed the word.
	// Only set when Result is WordExists.
	Languages []language.Language
}

// Resolver fans a word out to one dictionary lookup per enabled language,
// each bounded by LookupTimeout, and aggregates the tri-state outcomes:
// any confirmation accepts the word, unanimous misses reject it, and anything
// else is an error the turn must not be charged for. Concurrent lookups of
// the same word and language share a single request.
type Resolver struct {
	client *Client
	group  singleflight.Group
	logger *logging.Logger
}

func NewResolver(client *Client, logger *logging.Logger) *Resolver {
	if client == nil {
		client = NewClient()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{
		client: client,
		logger: logger,
	}
}

// Resolve looks the word up in every given language in parallel. A lookup that
// times out does not cancel its siblings.
func (r *Resolver) Resolve(ctx context.Context, word string, langs []language.Language) Resolution {
	results := make([]LookupResult, len(langs))

	var wg sync.WaitGroup
	for i, lang := range langs {
		wg.Add(1)
		go func(i int, lang language.Language) {
			defer wg.Done()
			results[i] = r.lookup(ctx, word, lang)
		}(i, lang)
	}
	wg.Wait()

	var confirmed []language.Language
	sawError := false
	for i, res := range results {
		switch res {
		case WordExists:
			confirmed = append(confirmed, langs[i])
		case WordError:
			sawError = true
		}
	}

	if len(confirmed) > 0 {
		return Resolution{Result: WordExists, Languages: confirmed}
	}
	if sawError {
		return Resolution{Result: WordError}
	}
	return Resolution{Result: WordDoesNotExist}
}

func (r *Resolver) lookup(ctx context.Context, word string, lang language.Language) LookupResult {
	key := lang.Code() + ":" + word

	res, err, _ := r.group.Do(key, func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(ctx, LookupTimeout)
		defer cancel()

		result, err := r.client.Lookup(lookupCtx, word, lang.Code())
		if err != nil {
			r.logger.Error("dictionary lookup failed", "word", word, "language", lang.Code(), "error", err.Error())
			metrics.LookupFailCount.Add(1)
		} else {
			metrics.LookupSuccessCount.Add(1)
		}
		metrics.WordLookupTotal.WithLabelValues(lang.Code(), result.String()).Inc()
		return result, nil
	})
	if err != nil {
		return WordError
	}
	return res.(LookupResult)
}
