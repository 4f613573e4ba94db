package telegram

import (
	"strconv"
	"strings"

	"github.com/gotd/td/tg"
)

// messageText flattens a message into displayable text. Media turns
// into a bracketed placeholder, with the caption appended when one is
// set.
func messageText(m *tg.Message) string {
	media, ok := m.GetMedia()
	if !ok {
		return m.Message
	}
	tag := mediaTag(media)
	if tag == "" {
		return m.Message
	}
	if m.Message == "" {
		return tag
	}
	return tag + " " + m.Message
}

func mediaTag(media tg.MessageMediaClass) string {
	switch v := media.(type) {
	case *tg.MessageMediaEmpty, *tg.MessageMediaWebPage:
		return ""
	case *tg.MessageMediaPhoto:
		return "[photo]"
	case *tg.MessageMediaDocument:
		return documentTag(v)
	case *tg.MessageMediaContact:
		return "[contact]"
	case *tg.MessageMediaGeo, *tg.MessageMediaGeoLive, *tg.MessageMediaVenue:
		return "[location]"
	case *tg.MessageMediaPoll:
		return "[poll]"
	case *tg.MessageMediaDice:
		return "[dice]"
	default:
		return "[media]"
	}
}

// documentTag narrows a document to the kind users actually sent:
// stickers, voice notes, video and plain files all arrive as
// MessageMediaDocument and only the attributes tell them apart.
func documentTag(media *tg.MessageMediaDocument) string {
	doc, ok := media.Document.(*tg.Document)
	if !ok {
		return "[document]"
	}
	animated := false
	for _, attr := range doc.Attributes {
		switch a := attr.(type) {
		case *tg.DocumentAttributeSticker:
			return "[sticker]"
		case *tg.DocumentAttributeAudio:
			if a.Voice {
				return "[voice]"
			}
			return "[audio]"
		case *tg.DocumentAttributeVideo:
			if a.RoundMessage {
				return "[video note]"
			}
			return "[video]"
		case *tg.DocumentAttributeAnimated:
			animated = true
		}
	}
	if animated {
		return "[gif]"
	}
	return "[document]"
}

// displayUserName picks the friendliest handle we have for a user.
func displayUserName(u *tg.User) string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	if username, ok := u.GetUsername(); ok && username != "" {
		return username
	}
	if u.Deleted {
		return "Deleted Account"
	}
	return "user " + strconv.FormatInt(u.ID, 10)
}
