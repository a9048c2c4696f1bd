package services

import (
	"sort"

	"github.com/google/uuid"
	"github.com/techagentng/bookclub/models"
)

// AggregateChats folds a user's messages into one summary per counterparty.
// The latest message of each conversation wins and unread counts only include
// messages userID received. Summaries come back most recent first; the name
// fields are left for the caller to join.
func AggregateChats(userID uuid.UUID, messages []models.Message) []models.ChatSummary {
	ordered := make([]models.Message, len(messages))
	copy(ordered, messages)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		}
		return ordered[i].ID.String() > ordered[j].ID.String()
	})

	index := make(map[uuid.UUID]int)
	summaries := make([]models.ChatSummary, 0)
	for _, m := range ordered {
		other := m.Counterparty(userID)
		i, seen := index[other]
		if !seen {
			i = len(summaries)
			index[other] = i
			summaries = append(summaries, models.ChatSummary{
				OtherUserID:     other,
				LastMessage:     m.Text,
				LastMessageTime: m.CreatedAt,
			})
		}
		if m.ReceiverID == userID && !m.Read {
			summaries[i].UnreadCount++
		}
	}
	return summaries
}

// JoinProfiles fills in names and drops summaries whose counterparty no longer exists.
func JoinProfiles(summaries []models.ChatSummary, profiles map[uuid.UUID]models.UserProfile) []models.ChatSummary {
	joined := make([]models.ChatSummary, 0, len(summaries))
	for _, s := range summaries {
		p, ok := profiles[s.OtherUserID]
		if !ok {
			continue
		}
		s.FirstName = p.FirstName
		s.LastName = p.LastName
		joined = append(joined, s)
	}
	return joined
}

func counterparties(summaries []models.ChatSummary) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.OtherUserID)
	}
	return ids
}
