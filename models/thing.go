package models

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ThingKind — тип объекта Reddit, определяет префикс полного идентификатора (t1..t5).
type ThingKind int

const (
	KindComment   ThingKind = 1
	KindAccount   ThingKind = 2
	KindLink      ThingKind = 3
	KindMessage   ThingKind = 4
	KindSubreddit ThingKind = 5
)

var thingKindNames = map[ThingKind]string{
	KindComment:   "comment",
	KindAccount:   "account",
	KindLink:      "link",
	KindMessage:   "message",
	KindSubreddit: "subreddit",
}

// IsValid проверяет, что тип входит в перечисление.
func (k ThingKind) IsValid() bool {
	_, ok := thingKindNames[k]
	return ok
}

func (k ThingKind) String() string {
	if name, ok := thingKindNames[k]; ok {
		return name
	}
	return "ThingKind(" + strconv.Itoa(int(k)) + ")"
}

// Prefix возвращает префикс полного идентификатора, например "t3" для ссылки.
func (k ThingKind) Prefix() string {
	return "t" + strconv.Itoa(int(k))
}

// ParseThingKind принимает имя типа ("link"), номер ("3") или префикс ("t3").
func ParseThingKind(s string) (ThingKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range thingKindNames {
		if s == name || s == k.Prefix() {
			return k, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && ThingKind(n).IsValid() {
		return ThingKind(n), nil
	}
	return 0, errors.Errorf("unknown thing kind %q", s)
}

// VoteDirection — направление голоса.
type VoteDirection int

const (
	VoteUp      VoteDirection = 1
	VoteRescind VoteDirection = 0
	VoteDown    VoteDirection = -1
)

// IsValid проверяет, что направление одно из up/none/down.
func (d VoteDirection) IsValid() bool {
	return d >= VoteDown && d <= VoteUp
}

func (d VoteDirection) String() string {
	return strconv.Itoa(int(d))
}

// ParseVoteDirection принимает up/none/rescind/down или числа 1/0/-1.
func ParseVoteDirection(s string) (VoteDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "1", "+1":
		return VoteUp, nil
	case "none", "rescind", "0":
		return VoteRescind, nil
	case "down", "-1":
		return VoteDown, nil
	}
	return 0, errors.Errorf("unknown vote direction %q", s)
}
