// ABOUTME: Premium community messaging with demo conversations
// ABOUTME: Sending appends locally; there is no messaging endpoint yet

package dashboard

import (
	"slices"
	"strings"
	"time"

	"github.com/Rayanebsh/Pathwayfr/internal/session"
)

// OwnAuthor is the author shown on the user's own messages
const OwnAuthor = "Vous"

// Conversation is one thread of the messaging page
type Conversation struct {
	ID           int
	Title        string
	Participants []string
	LastMessage  string
	LastActivity string
	Unread       int
	Category     string
}

// Message is one entry of a thread
type Message struct {
	ID        int
	Author    string
	Content   string
	Timestamp string
	Own       bool
}

// Messaging holds the conversation list, the open thread and the search
// term. It is owned by a single screen and is not safe for concurrent use.
type Messaging struct {
	conversations []Conversation
	threads       map[int][]Message
	selected      int
	search        string
	now           func() time.Time
}

// MessagingAccess gates the page on a premium subscription
func MessagingAccess(st session.State) Access {
	if !st.LoggedIn {
		return AccessLoginRequired
	}
	if !st.Premium() {
		return AccessPremiumRequired
	}
	return AccessGranted
}

// NewMessaging loads the demo conversations with the first one open
func NewMessaging() *Messaging {
	m := &Messaging{
		conversations: []Conversation{
			{1, "Admission Sciences Po 2024", []string{"Jean Dupont", "Marie Martin", "Pierre Durand"},
				"Merci pour vos conseils, très utile !", "Il y a 2h", 3, "admission"},
			{2, "Groupe Économie Sorbonne", []string{"Sophie Leroy", "Antoine Moreau", "Camille Dubois"},
				"Quelqu'un a des infos sur les prérequis ?", "Il y a 5h", 0, "etudes"},
			{3, "Entraide Master HEC", []string{"Lucas Bernard", "Emma Rousseau"},
				"Je peux partager mon dossier de candidature", "Hier", 1, "entraide"},
		},
		threads: map[int][]Message{
			1: {
				{1, "Jean Dupont", "Salut tout le monde ! J'ai une question sur les critères d'admission à Sciences Po. Est-ce que quelqu'un a des retours d'expérience ?", "14:30", false},
				{2, "Marie Martin", "Salut Jean ! J'ai été acceptée l'année dernière. Les notes sont importantes mais ils regardent aussi beaucoup le projet professionnel et les activités extra-scolaires.", "14:35", false},
				{3, OwnAuthor, "Merci Marie ! Est-ce que tu peux nous en dire plus sur l'entretien de motivation ?", "14:40", true},
				{4, "Pierre Durand", "L'entretien dure environ 20 minutes. Ils posent des questions sur ton parcours, tes motivations et l'actualité. Il faut bien se préparer !", "14:45", false},
			},
			2: {{1, "Sophie Leroy", "Quelqu'un a des infos sur les prérequis ?", "09:12", false}},
			3: {{1, "Lucas Bernard", "Je peux partager mon dossier de candidature", "18:03", false}},
		},
		selected: 1,
		now:      time.Now,
	}
	return m
}

// SetSearch filters the conversation list
func (m *Messaging) SetSearch(q string) {
	m.search = q
}

// Conversations returns the conversations whose title or participants
// contain the search term, ignoring case
func (m *Messaging) Conversations() []Conversation {
	q := strings.ToLower(strings.TrimSpace(m.search))
	var out []Conversation
	for _, c := range m.conversations {
		if q == "" || strings.Contains(strings.ToLower(c.Title), q) ||
			slices.ContainsFunc(c.Participants, func(p string) bool {
				return strings.Contains(strings.ToLower(p), q)
			}) {
			out = append(out, c)
		}
	}
	return out
}

// Select opens a conversation and marks it read. Unknown ids are ignored.
func (m *Messaging) Select(id int) bool {
	for i := range m.conversations {
		if m.conversations[i].ID == id {
			m.selected = id
			m.conversations[i].Unread = 0
			return true
		}
	}
	return false
}

// Selected returns the open conversation
func (m *Messaging) Selected() Conversation {
	for _, c := range m.conversations {
		if c.ID == m.selected {
			return c
		}
	}
	return Conversation{}
}

// Messages returns the open thread
func (m *Messaging) Messages() []Message {
	return slices.Clone(m.threads[m.selected])
}

// Send appends text to the open thread as the user's message. Blank text is
// ignored and reports false.
func (m *Messaging) Send(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	thread := m.threads[m.selected]
	msg := Message{
		ID:        len(thread) + 1,
		Author:    OwnAuthor,
		Content:   text,
		Timestamp: m.now().Format("15:04"),
		Own:       true,
	}
	m.threads[m.selected] = append(thread, msg)
	for i := range m.conversations {
		if m.conversations[i].ID == m.selected {
			m.conversations[i].LastMessage = text
			m.conversations[i].LastActivity = "À l'instant"
		}
	}
	return true
}
