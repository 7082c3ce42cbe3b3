package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/vkurushin/wordchain/internal/model"
	"github.com/vkurushin/wordchain/internal/repository"
)

const dictTTL = time.Hour

func wordKey(title string) string { return "dict:word:" + title }
func cityKey(title string) string { return "dict:city:" + title }

// Words decorates a WordRepository with title-lookup caching.
// Writes pass through and invalidate the affected titles.
type Words struct {
	src repository.WordRepository
	c   *Client
}

// NewWords wraps src. A nil client disables caching.
func NewWords(src repository.WordRepository, c *Client) *Words {
	return &Words{src: src, c: c}
}

// GetByTitle returns the cached word when present, falling back to the
// underlying repository and priming the cache on a hit.
func (w *Words) GetByTitle(ctx context.Context, title string) (*model.Word, error) {
	if w.c != nil {
		data, err := w.c.rdb.Get(ctx, wordKey(title)).Bytes()
		if err == nil {
			var word model.Word
			if jerr := json.Unmarshal(data, &word); jerr == nil {
				return &word, nil
			}
		} else if err != redis.Nil {
			log.Debug().Err(err).Str("title", title).Msg("word cache read failed")
		}
	}
	word, err := w.src.GetByTitle(ctx, title)
	if err != nil || word == nil {
		return word, err
	}
	w.prime(ctx, word)
	return word, nil
}

// Create inserts the word and invalidates its title.
func (w *Words) Create(ctx context.Context, title string, isCorrect bool) (*model.Word, error) {
	word, err := w.src.Create(ctx, title, isCorrect)
	if err != nil {
		return nil, err
	}
	w.invalidate(ctx, word.Title)
	return word, nil
}

// Patch updates the word and invalidates both old and new titles.
func (w *Words) Patch(ctx context.Context, id int64, title *string, isCorrect *bool) (*model.Word, error) {
	old, err := w.src.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	word, err := w.src.Patch(ctx, id, title, isCorrect)
	if err != nil || word == nil {
		return word, err
	}
	if old != nil {
		w.invalidate(ctx, old.Title)
	}
	w.invalidate(ctx, word.Title)
	return word, nil
}

// Delete removes the word and invalidates its title.
func (w *Words) Delete(ctx context.Context, id int64) error {
	old, err := w.src.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := w.src.Delete(ctx, id); err != nil {
		return err
	}
	if old != nil {
		w.invalidate(ctx, old.Title)
	}
	return nil
}

// GetByID passes through.
func (w *Words) GetByID(ctx context.Context, id int64) (*model.Word, error) {
	return w.src.GetByID(ctx, id)
}

// List passes through; list results are unbounded and not cached.
func (w *Words) List(ctx context.Context, isCorrect *bool) ([]model.Word, error) {
	return w.src.List(ctx, isCorrect)
}

func (w *Words) prime(ctx context.Context, word *model.Word) {
	if w.c == nil {
		return
	}
	data, err := json.Marshal(word)
	if err != nil {
		return
	}
	if err := w.c.rdb.Set(ctx, wordKey(word.Title), data, dictTTL).Err(); err != nil {
		log.Debug().Err(err).Str("title", word.Title).Msg("word cache write failed")
	}
}

func (w *Words) invalidate(ctx context.Context, title string) {
	if w.c == nil {
		return
	}
	if err := w.c.rdb.Del(ctx, wordKey(title)).Err(); err != nil {
		log.Debug().Err(err).Str("title", title).Msg("word cache invalidate failed")
	}
}

// Cities decorates a CityRepository with title-lookup caching. The
// city list is admin-maintained reference data, so entries simply
// expire with the TTL.
type Cities struct {
	src repository.CityRepository
	c   *Client
}

// NewCities wraps src. A nil client disables caching.
func NewCities(src repository.CityRepository, c *Client) *Cities {
	return &Cities{src: src, c: c}
}

// GetByTitle returns the cached city when present, falling back to the
// underlying repository and priming the cache on a hit.
func (ci *Cities) GetByTitle(ctx context.Context, title string) (*model.City, error) {
	if ci.c != nil {
		data, err := ci.c.rdb.Get(ctx, cityKey(title)).Bytes()
		if err == nil {
			var city model.City
			if jerr := json.Unmarshal(data, &city); jerr == nil {
				return &city, nil
			}
		} else if err != redis.Nil {
			log.Debug().Err(err).Str("title", title).Msg("city cache read failed")
		}
	}
	city, err := ci.src.GetByTitle(ctx, title)
	if err != nil || city == nil {
		return city, err
	}
	ci.prime(ctx, city)
	return city, nil
}

// List passes through.
func (ci *Cities) List(ctx context.Context) ([]model.City, error) {
	return ci.src.List(ctx)
}

func (ci *Cities) prime(ctx context.Context, city *model.City) {
	if ci.c == nil {
		return
	}
	data, err := json.Marshal(city)
	if err != nil {
		return
	}
	if err := ci.c.rdb.Set(ctx, cityKey(city.Title), data, dictTTL).Err(); err != nil {
		log.Debug().Err(err).Str("title", city.Title).Msg("city cache write failed")
	}
}
