package service

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vkurushin/wordchain/internal/messages"
	"github.com/vkurushin/wordchain/internal/repository"
)

// Verdict classifies a submitted word against a dictionary.
type Verdict int

const (
	// VerdictAccepted means the word exists and play continues.
	VerdictAccepted Verdict = iota
	// VerdictRejected means the word is known to not exist.
	VerdictRejected
	// VerdictUnknown means the dictionary cannot decide; the room votes.
	VerdictUnknown
)

func (v Verdict) String() string {
	switch v {
	case VerdictAccepted:
		return "accepted"
	case VerdictRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Dictionary decides whether submitted words exist and supplies the
// game's opening word. Implementations are chosen per setting title.
type Dictionary interface {
	// Pick returns a random opening word, or "" when the source is empty.
	Pick(ctx context.Context) (string, error)
	// Check classifies a lowercased submission.
	Check(ctx context.Context, title string) (Verdict, error)
	// RejectText renders the elimination message for a rejected word.
	RejectText(playerName, word string) string
}

// DictionaryFor returns the strategy for a setting title. Every title
// except the city game plays against the common word list.
func DictionaryFor(title string, words repository.WordRepository, cities repository.CityRepository) Dictionary {
	if title == SettingCities {
		return &citiesDictionary{cities: cities}
	}
	return &wordsDictionary{words: words}
}

// wordsDictionary validates against the word list. Blacklisted entries
// are rejected; words missing from the list go to a chat vote.
type wordsDictionary struct {
	words repository.WordRepository
}

func (d *wordsDictionary) Pick(ctx context.Context) (string, error) {
	isCorrect := true
	list, err := d.words.List(ctx, &isCorrect)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", nil
	}
	return list[gameIntn(len(list))].Title, nil
}

func (d *wordsDictionary) Check(ctx context.Context, title string) (Verdict, error) {
	word, err := d.words.GetByTitle(ctx, title)
	if err != nil {
		return VerdictUnknown, err
	}
	if word == nil {
		return VerdictUnknown, nil
	}
	if !word.IsCorrect {
		return VerdictRejected, nil
	}
	return VerdictAccepted, nil
}

func (d *wordsDictionary) RejectText(playerName, word string) string {
	return messages.PlayerWordBlacklisted(playerName, word)
}

// citiesDictionary validates against the city catalog. A city is either
// known or it is not, there is nothing to vote on.
type citiesDictionary struct {
	cities repository.CityRepository
}

func (d *citiesDictionary) Pick(ctx context.Context) (string, error) {
	list, err := d.cities.List(ctx)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", nil
	}
	return list[gameIntn(len(list))].Title, nil
}

func (d *citiesDictionary) Check(ctx context.Context, title string) (Verdict, error) {
	city, err := d.cities.GetByTitle(ctx, Capitalize(title))
	if err != nil {
		return VerdictUnknown, err
	}
	if city == nil {
		return VerdictRejected, nil
	}
	return VerdictAccepted, nil
}

func (d *citiesDictionary) RejectText(playerName, word string) string {
	return messages.CityDoesntExist(playerName, word)
}

// Capitalize uppercases the first rune and lowercases the rest,
// matching how city titles are stored.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
