// Package messages formats every user-visible chat string the bot
// sends. All texts are Russian; functions are pure so the engine and
// tests share one source of truth.
package messages

import (
	"fmt"
	"strings"
)

// ScoreRow is one scoreboard line: rank, player name and score.
type ScoreRow struct {
	Rank  int
	Name  string
	Score int64
}

// StartHint prompts an idle room to pick a game mode.
func StartHint() string {
	return "Для начала игры напишите слова или города"
}

// RegistrationPrompt announces registration for the chosen mode.
func RegistrationPrompt(setting string, timeout int64) string {
	return fmt.Sprintf(`Регистрация игроков в игру %s. Если хотите участвовать, напишите "я". Время на регистрацию %d секунд`, setting, timeout)
}

// RegistrationAck confirms a registration.
func RegistrationAck(name string) string {
	return fmt.Sprintf("Игрок %s зарегистрирован", name)
}

// RegistrationConflict tells a player they are already registered.
func RegistrationConflict(name string) string {
	return fmt.Sprintf("Игрок %s. Вы уже зарегистрированы", name)
}

// RegistrationError reports a failed registration attempt.
func RegistrationError(name string) string {
	return fmt.Sprintf("Игрок %s. Ошибка регистрации", name)
}

// RegistrationFailed reports that too few players registered.
func RegistrationFailed() string {
	return "Для игры необходимо хотя бы 2 участника"
}

// RegistrationSuccess announces the end of registration.
func RegistrationSuccess() string {
	return "Регистрация завершена. Если захотите узнать счет игры - напишите '!статус'"
}

// PlayerMove announces whose turn it is.
func PlayerMove(name, lastWord string, timeout int64) string {
	return fmt.Sprintf("Ходит игрок %s. Предыдущее слово - %s. Время на ход %d секунд", name, lastWord, timeout)
}

// PlayerTimeout announces an elimination by timeout.
func PlayerTimeout(name string) string {
	return fmt.Sprintf("Игрок %s - время вышло. Вы покидаете игру", name)
}

// PlayerUsedWord announces an elimination for repeating a word.
func PlayerUsedWord(name, word string) string {
	return fmt.Sprintf("Игрок %s - слово %s уже называлось. Вы покидаете игру", name, word)
}

// PlayerWordWrong announces an elimination for breaking the letter chain.
func PlayerWordWrong(name, word, lastWord string) string {
	return fmt.Sprintf("Игрок %s - слово %s не начинается на последнюю букву предыдущего слова %s.Вы покидаете игру", name, word, lastWord)
}

// PlayerWordBlacklisted announces an elimination for a blacklisted word.
func PlayerWordBlacklisted(name, word string) string {
	return fmt.Sprintf("Игрок %s - слова %s не существует. Вы покидаете игру", name, word)
}

// CityDoesntExist announces an elimination for an unknown city.
func CityDoesntExist(name, word string) string {
	return fmt.Sprintf("Игрок %s - города %s не существует. Вы покидаете игру", name, word)
}

// VotePrompt opens a vote on an unknown word.
func VotePrompt(word string, timeout int64) string {
	return fmt.Sprintf("Неизвестное слово %s, голосование продлится %d секунд если вы считаете, что оно существует, напишите 'Да', если не существует - 'Нет' ", word, timeout)
}

// VoteAck confirms a recorded vote.
func VoteAck(name string) string {
	return fmt.Sprintf("Игрок %s проголосовал", name)
}

// VoteConflict tells a player they already voted.
func VoteConflict(name string) string {
	return fmt.Sprintf("Игрок %s. Вы уже голосовали", name)
}

// VoteSelf tells the proposer they cannot vote for their own word.
func VoteSelf(name string) string {
	return fmt.Sprintf("Игрок %s. Вы не можете голосовать за свое слово", name)
}

// VoteResult announces the vote outcome.
func VoteResult(word string, accepted bool) string {
	verdict := " не существует"
	if accepted {
		verdict = " существует"
	}
	return "Голосование окончено. Слово " + word + verdict
}

// GameFinished announces the end of a game, naming the winner when
// there is one.
func GameFinished(winner string) string {
	if winner != "" {
		return "Игра завершена. Победитель - " + winner
	}
	return "Игра завершена."
}

// Status renders the scoreboard for the room's current state.
func Status(status string, rows []ScoreRow) string {
	switch status {
	case "init":
		return "Игра еще не началась. Для начала регистрации напишите слова или города"
	case "registration":
		parts := make([]string, len(rows))
		for i, row := range rows {
			parts[i] = fmt.Sprintf("%d. %s", row.Rank, row.Name)
		}
		return "Идет регистрация. Зарегистрированы следующие игроки\n" + strings.Join(parts, " ")
	default:
		parts := make([]string, len(rows))
		for i, row := range rows {
			parts[i] = fmt.Sprintf("%d. %s: %d", row.Rank, row.Name, row.Score)
		}
		return "Счет игры: " + strings.Join(parts, " ")
	}
}
