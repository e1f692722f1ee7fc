package facilitator

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"foodmemories/internal/client"
	"foodmemories/internal/facilitator/mocks"
	"foodmemories/internal/model"
)

func newConsole(t *testing.T, api *mocks.MockAPI) (*Console, *Session, *bytes.Buffer) {
	t.Helper()
	s, _ := newSession(t, api)
	var out bytes.Buffer
	return NewConsole(s, &out), s, &out
}

func TestConsole_Navigation(t *testing.T) {
	c, s, out := newConsole(t, new(mocks.MockAPI))
	ctx := context.Background()

	require.NoError(t, c.Exec(ctx, "next"))
	assert.Contains(t, out.String(), "1-2 Food Memory Map / Culinary Landscape (45 min)")

	out.Reset()
	require.NoError(t, c.Exec(ctx, "day 2"))
	require.NoError(t, c.Exec(ctx, "phase 2"))
	assert.Contains(t, out.String(), "Collaborative Cooking and Guided Conversation")
	assert.Equal(t, "2-2", s.Navigator().Current().ID)

	out.Reset()
	require.NoError(t, c.Exec(ctx, "done"))
	assert.Contains(t, out.String(), "module 2-2 marked complete")
	require.NoError(t, c.Exec(ctx, "show"))
	assert.Contains(t, out.String(), "[x] 2-2 Cooking as Heritage Practice")
	assert.Contains(t, out.String(), "Purpose: To understand cooking as cultural practice")

	assert.Error(t, c.Exec(ctx, "day 5"))
	assert.Error(t, c.Exec(ctx, "phase x"))
	assert.Error(t, c.Exec(ctx, "done 9-9"))
}

func TestConsole_TimerAndNotes(t *testing.T) {
	c, _, out := newConsole(t, new(mocks.MockAPI))
	ctx := context.Background()

	require.NoError(t, c.Exec(ctx, "timer"))
	assert.Contains(t, out.String(), "--:-- idle")

	out.Reset()
	require.NoError(t, c.Exec(ctx, "timer start"))
	assert.Contains(t, out.String(), "30:00 running")

	out.Reset()
	require.NoError(t, c.Exec(ctx, "timer pause"))
	assert.Contains(t, out.String(), "30:00 stopped")

	out.Reset()
	require.NoError(t, c.Exec(ctx, "timer stopwatch"))
	assert.Contains(t, out.String(), "00:00 running")

	assert.Error(t, c.Exec(ctx, "timer start -3"))
	assert.Error(t, c.Exec(ctx, "timer lap"))

	out.Reset()
	require.NoError(t, c.Exec(ctx, `notes "observer arrives at 10"`))
	assert.Equal(t, "observer arrives at 10\n", out.String())
}

func TestConsole_Checklist(t *testing.T) {
	c, s, out := newConsole(t, new(mocks.MockAPI))

	require.NoError(t, c.Exec(context.Background(), "checklist day1-paper"))
	assert.True(t, s.Checklist().Done("day1-paper"))
	assert.Contains(t, out.String(), "[x] day1-paper")
	assert.Contains(t, out.String(), "1/14 done")

	assert.Error(t, c.Exec(context.Background(), "checklist nope"))
}

func TestConsole_Participants(t *testing.T) {
	api := new(mocks.MockAPI)
	api.On("CreateParticipant", mock.Anything, model.ParticipantFields{Name: "Ana Lee", Email: "ana@example.com"}).
		Return(&model.Participant{ID: "p1", Name: "Ana Lee", Email: "ana@example.com"}, nil)
	api.On("DeleteParticipant", mock.Anything, "p1").Return(nil)
	c, _, out := newConsole(t, api)
	ctx := context.Background()

	require.NoError(t, c.Exec(ctx, `participant add -name "Ana Lee" -email ana@example.com`))
	assert.Contains(t, out.String(), "saved participant Ana Lee (p1)")

	out.Reset()
	require.NoError(t, c.Exec(ctx, "participants"))
	assert.Contains(t, out.String(), "ana@example.com")

	assert.ErrorIs(t, c.Exec(ctx, "participant edit -name Bob"), flag.ErrHelp)

	require.NoError(t, c.Exec(ctx, "participant rm p1"))
	out.Reset()
	require.NoError(t, c.Exec(ctx, "participants"))
	assert.Contains(t, out.String(), "no participants")
}

func TestConsole_PhotoUploadAndErrors(t *testing.T) {
	api := new(mocks.MockAPI)
	api.On("CheckUpload", "dish.png").Return("image/png", nil)
	api.On("UploadPhoto", mock.Anything, client.PhotoUpload{
		Day: 1, ModuleID: "1-1", ParticipantIDs: []string{"p1", "p2"}, Caption: "grandma's soup", Path: "dish.png",
	}).Return(&model.Photo{ID: "ph1", Day: 1, ModuleID: "1-1", OriginalName: "dish.png", URL: "http://localhost:4000/uploads/x.png"}, nil)
	api.On("DeletePhoto", mock.Anything, "gone").Return(&client.APIError{Status: 404, Message: "Photo not found"})
	c, _, out := newConsole(t, api)
	ctx := context.Background()

	require.NoError(t, c.Exec(ctx, `photo upload -participants "p1, p2" -caption "grandma's soup" dish.png`))
	assert.Contains(t, out.String(), "uploaded dish.png -> http://localhost:4000/uploads/x.png")

	out.Reset()
	require.NoError(t, c.Exec(ctx, "photos"))
	assert.Contains(t, out.String(), "ph1")

	assert.EqualError(t, c.Exec(ctx, "photo rm gone"), "Photo not found")
	out.Reset()
	require.NoError(t, c.Exec(ctx, "errors"))
	assert.Contains(t, out.String(), "Photo not found")

	require.NoError(t, c.Exec(ctx, "dismiss photos"))
	out.Reset()
	require.NoError(t, c.Exec(ctx, "errors"))
	assert.Equal(t, "no errors\n", out.String())
}

func TestConsole_Run(t *testing.T) {
	c, _, out := newConsole(t, new(mocks.MockAPI))

	err := c.Run(context.Background(), strings.NewReader("show\nbogus\nquit\nnext\n"))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Purpose:")
	assert.Contains(t, out.String(), `error: unknown command "bogus"`)
	assert.NotContains(t, out.String(), "1-2 Food Memory Map")
}

func TestSplitArgs(t *testing.T) {
	args, err := splitArgs(`photo upload -caption "a b" 'c d' e`)
	require.NoError(t, err)
	assert.Equal(t, []string{"photo", "upload", "-caption", "a b", "c d", "e"}, args)

	args, err = splitArgs(`notes ""`)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes", ""}, args)

	_, err = splitArgs(`notes "open`)
	assert.Error(t, err)
}
