package teststore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/usememos/convo/plugin/exchange"
	"github.com/usememos/convo/store"
)

func newConversation(projectID int64, queries ...string) *store.Conversation {
	conv := store.NewConversation(projectID)
	for _, q := range queries {
		ex := exchange.New(q)
		ex.Answer = "answer to " + q
		ex.SearchSteps = []exchange.SearchStep{{Kind: "code", Query: q, Content: "matched " + q}}
		conv.Exchanges = append(conv.Exchanges, ex)
	}
	return conv
}

func upsert(ctx context.Context, t *testing.T, ts *store.Store, conv *store.Conversation, userID string) *store.Conversation {
	t.Helper()
	stored, err := ts.UpsertConversation(ctx, &store.UpsertConversation{Conversation: conv, UserID: userID})
	require.NoError(t, err)
	return stored
}

func TestConversationScenario(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	project := MustCreateProject(ctx, t, ts, "u1")

	conv := newConversation(project.ID, "fix bug\ndetails")
	stored := upsert(ctx, t, ts, conv, "u1")

	previews, err := ts.ListConversationPreviews(ctx, &store.FindConversationPreview{UserID: "u1", ProjectID: project.ID})
	require.NoError(t, err)
	require.Len(t, previews, 1)
	assert.Equal(t, "fix bug", previews[0].Title)
	assert.Equal(t, stored.ID, previews[0].ID)
	assert.Equal(t, stored.CreatedAt, previews[0].CreatedAt)

	loaded, err := ts.GetConversation(ctx, &store.FindConversation{UserID: "u1", ProjectID: project.ID, ID: stored.ID})
	require.NoError(t, err)
	require.Len(t, loaded.Exchanges, 1)
	q, _ := loaded.Exchanges[0].Query()
	assert.Equal(t, "fix bug\ndetails", q)
	assert.Equal(t, conv.ThreadID, loaded.ThreadID)

	err = ts.DeleteConversation(ctx, &store.DeleteConversation{UserID: "u1", ProjectID: project.ID, ID: stored.ID})
	require.NoError(t, err)

	_, err = ts.GetConversation(ctx, &store.FindConversation{UserID: "u1", ProjectID: project.ID, ID: stored.ID})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestConversationRoundTrip(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	project := MustCreateProject(ctx, t, ts, "u1")

	conv := newConversation(project.ID, "how does auth work?", "and the token ttl?", "thanks")
	conv.Exchanges[1].Paths = []string{"server/auth/token.go"}
	conv.Exchanges[2].Paths = []string{}
	conv.Exchanges[2].SearchSteps = []exchange.SearchStep{}
	conv.Exchanges[1].FocusedChunk = &exchange.CodeChunk{Path: "server/auth/token.go", StartLine: 10, EndLine: 20, Code: "func ParseAccessToken"}
	stored := upsert(ctx, t, ts, conv, "u1")

	loaded, err := ts.GetConversation(ctx, &store.FindConversation{UserID: "u1", ProjectID: project.ID, ID: stored.ID})
	require.NoError(t, err)
	assert.Equal(t, conv.Exchanges, loaded.Exchanges)
	assert.Equal(t, conv.ThreadID, loaded.ThreadID)
	assert.Equal(t, project.ID, loaded.ProjectID)
	assert.Equal(t, "how does auth work?", loaded.Title)
}

func TestConversationReplaceKeepsThread(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	project := MustCreateProject(ctx, t, ts, "u1")

	conv := newConversation(project.ID, "first question")
	first := upsert(ctx, t, ts, conv, "u1")

	conv.Exchanges = append(conv.Exchanges, exchange.New("follow up"))
	second := upsert(ctx, t, ts, conv, "u1")
	assert.NotEqual(t, first.ID, second.ID, "replace-save recreates the row")
	assert.Equal(t, first.ThreadID, second.ThreadID)

	previews, err := ts.ListConversationPreviews(ctx, &store.FindConversationPreview{UserID: "u1", ProjectID: project.ID})
	require.NoError(t, err)
	require.Len(t, previews, 1)
	assert.Equal(t, second.ID, previews[0].ID)

	_, err = ts.GetConversation(ctx, &store.FindConversation{UserID: "u1", ProjectID: project.ID, ID: first.ID})
	require.ErrorIs(t, err, store.ErrNotFound)

	loaded, err := ts.GetConversation(ctx, &store.FindConversation{UserID: "u1", ProjectID: project.ID, ID: second.ID})
	require.NoError(t, err)
	assert.Equal(t, conv.ThreadID, loaded.ThreadID)
	assert.Equal(t, conv.Exchanges, loaded.Exchanges)
}

func TestConversationValidationKeepsPriorState(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	project := MustCreateProject(ctx, t, ts, "u1")

	conv := newConversation(project.ID, "keep me")
	stored := upsert(ctx, t, ts, conv, "u1")
	original := append([]exchange.Exchange(nil), conv.Exchanges...)

	conv.Exchanges = nil
	_, err := ts.UpsertConversation(ctx, &store.UpsertConversation{Conversation: conv, UserID: "u1"})
	require.ErrorIs(t, err, store.ErrValidation)

	conv.Exchanges = []exchange.Exchange{{ID: uuid.New(), Answer: "no query"}}
	_, err = ts.UpsertConversation(ctx, &store.UpsertConversation{Conversation: conv, UserID: "u1"})
	require.ErrorIs(t, err, store.ErrValidation)

	loaded, err := ts.GetConversation(ctx, &store.FindConversation{UserID: "u1", ProjectID: project.ID, ID: stored.ID})
	require.NoError(t, err)
	assert.Equal(t, original, loaded.Exchanges)
	assert.Equal(t, "keep me", loaded.Title)
}

func TestConversationRejectsInvalidUTF8(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	project := MustCreateProject(ctx, t, ts, "u1")

	conv := newConversation(project.ID, "keep me")
	stored := upsert(ctx, t, ts, conv, "u1")

	bad := []*store.Conversation{
		newConversation(project.ID, "fix\xffbug\nmore"),
		newConversation(project.ID, "valid query"),
		newConversation(project.ID, "valid query"),
	}
	bad[1].Exchanges[0].Answer = "broken \xc3"
	bad[2].Exchanges[0].SearchSteps[0].Content = "\xfe\xff"
	for _, b := range bad {
		b.ThreadID = conv.ThreadID
		_, err := ts.UpsertConversation(ctx, &store.UpsertConversation{Conversation: b, UserID: "u1"})
		require.ErrorIs(t, err, store.ErrValidation)
	}

	loaded, err := ts.GetConversation(ctx, &store.FindConversation{UserID: "u1", ProjectID: project.ID, ID: stored.ID})
	require.NoError(t, err)
	assert.Equal(t, conv.Exchanges, loaded.Exchanges)
	assert.Equal(t, "keep me", loaded.Title)
}

func TestConversationUniformAbsence(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	owned := MustCreateProject(ctx, t, ts, "u1")
	other := MustCreateProject(ctx, t, ts, "u1")
	MustCreateProject(ctx, t, ts, "u2")

	stored := upsert(ctx, t, ts, newConversation(owned.ID, "private"), "u1")

	cases := map[string]*store.FindConversation{
		"other user":    {UserID: "u2", ProjectID: owned.ID, ID: stored.ID},
		"wrong project": {UserID: "u1", ProjectID: other.ID, ID: stored.ID},
		"missing id":    {UserID: "u1", ProjectID: owned.ID, ID: stored.ID + 1000},
	}
	for name, find := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ts.GetConversation(ctx, find)
			require.ErrorIs(t, err, store.ErrNotFound)

			err = ts.DeleteConversation(ctx, &store.DeleteConversation{UserID: find.UserID, ProjectID: find.ProjectID, ID: find.ID})
			require.ErrorIs(t, err, store.ErrNotFound)
		})
	}

	previews, err := ts.ListConversationPreviews(ctx, &store.FindConversationPreview{UserID: "u2", ProjectID: owned.ID})
	require.NoError(t, err)
	assert.Empty(t, previews)

	// None of the attempts above touched the owner's conversation.
	_, err = ts.GetConversation(ctx, &store.FindConversation{UserID: "u1", ProjectID: owned.ID, ID: stored.ID})
	require.NoError(t, err)
}

func TestConversationWriteRequiresOwnership(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	victim := MustCreateProject(ctx, t, ts, "u1")
	attacker := MustCreateProject(ctx, t, ts, "u2")

	conv := newConversation(victim.ID, "victim thread")
	stored := upsert(ctx, t, ts, conv, "u1")

	// Writing into a project the caller does not own is refused.
	planted := newConversation(victim.ID, "planted")
	_, err := ts.UpsertConversation(ctx, &store.UpsertConversation{Conversation: planted, UserID: "u2"})
	require.ErrorIs(t, err, store.ErrNotFound)

	// Reusing someone else's thread id only affects the caller's own rows.
	hijack := &store.Conversation{
		ThreadID:  conv.ThreadID,
		ProjectID: attacker.ID,
		Exchanges: []exchange.Exchange{exchange.New("hijack")},
	}
	upsert(ctx, t, ts, hijack, "u2")

	previews, err := ts.ListConversationPreviews(ctx, &store.FindConversationPreview{UserID: "u1", ProjectID: victim.ID})
	require.NoError(t, err)
	require.Len(t, previews, 1)
	assert.Equal(t, stored.ID, previews[0].ID)
	assert.Equal(t, "victim thread", previews[0].Title)
}

func TestConversationListOrdering(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	project := MustCreateProject(ctx, t, ts, "u1")

	empty, err := ts.ListConversationPreviews(ctx, &store.FindConversationPreview{UserID: "u1", ProjectID: project.ID})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	a := upsert(ctx, t, ts, newConversation(project.ID, "A"), "u1")
	b := upsert(ctx, t, ts, newConversation(project.ID, "B"), "u1")
	c := upsert(ctx, t, ts, newConversation(project.ID, "C"), "u1")

	previews, err := ts.ListConversationPreviews(ctx, &store.FindConversationPreview{UserID: "u1", ProjectID: project.ID})
	require.NoError(t, err)
	require.Len(t, previews, 3)
	assert.Equal(t, []int64{c.ID, b.ID, a.ID}, []int64{previews[0].ID, previews[1].ID, previews[2].ID})
	assert.Equal(t, []string{"C", "B", "A"}, []string{previews[0].Title, previews[1].Title, previews[2].Title})
}

func TestConversationConcurrentReplace(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	project := MustCreateProject(ctx, t, ts, "u1")

	base := newConversation(project.ID, "base")
	upsert(ctx, t, ts, base, "u1")

	p1 := &store.Conversation{ThreadID: base.ThreadID, ProjectID: project.ID, Exchanges: newConversation(project.ID, "P1 first", "P1 second").Exchanges}
	p2 := &store.Conversation{ThreadID: base.ThreadID, ProjectID: project.ID, Exchanges: newConversation(project.ID, "P2 only").Exchanges}

	var g errgroup.Group
	for _, payload := range []*store.Conversation{p1, p2} {
		g.Go(func() error {
			_, err := ts.UpsertConversation(ctx, &store.UpsertConversation{Conversation: payload, UserID: "u1"})
			// Serializable engines may abort the loser; that is a retryable storage error.
			if errors.Is(err, store.ErrStorage) {
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	previews, err := ts.ListConversationPreviews(ctx, &store.FindConversationPreview{UserID: "u1", ProjectID: project.ID})
	require.NoError(t, err)
	require.Len(t, previews, 1)

	loaded, err := ts.GetConversation(ctx, &store.FindConversation{UserID: "u1", ProjectID: project.ID, ID: previews[0].ID})
	require.NoError(t, err)
	switch loaded.Title {
	case "P1 first":
		assert.Equal(t, p1.Exchanges, loaded.Exchanges)
	case "P2 only":
		assert.Equal(t, p2.Exchanges, loaded.Exchanges)
	default:
		t.Fatalf("unexpected persisted state %q", loaded.Title)
	}
}

func TestConversationCancelledContextLeavesState(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	project := MustCreateProject(ctx, t, ts, "u1")

	conv := newConversation(project.ID, "before cancel")
	stored := upsert(ctx, t, ts, conv, "u1")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	replacement := &store.Conversation{ThreadID: conv.ThreadID, ProjectID: project.ID, Exchanges: []exchange.Exchange{exchange.New("after cancel")}}
	_, err := ts.UpsertConversation(cancelled, &store.UpsertConversation{Conversation: replacement, UserID: "u1"})
	require.ErrorIs(t, err, store.ErrStorage)
	require.ErrorIs(t, err, context.Canceled)

	loaded, err := ts.GetConversation(ctx, &store.FindConversation{UserID: "u1", ProjectID: project.ID, ID: stored.ID})
	require.NoError(t, err)
	assert.Equal(t, "before cancel", loaded.Title)
}
