package team

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMeeting_Overlaps(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	m := Meeting{StartAt: base, EndAt: base.Add(time.Hour)}

	assert.True(t, m.Overlaps(base.Add(30*time.Minute), base.Add(90*time.Minute)))
	assert.True(t, m.Overlaps(base.Add(-time.Hour), base.Add(2*time.Hour)))
	assert.False(t, m.Overlaps(base.Add(time.Hour), base.Add(2*time.Hour)), "back-to-back meetings do not conflict")
	assert.False(t, m.Overlaps(base.Add(-time.Hour), base))

	m.IsCancelled = true
	assert.False(t, m.Overlaps(base, base.Add(time.Hour)))
}

func TestMemberRole(t *testing.T) {
	assert.True(t, MemberRoleLeader.CanContribute())
	assert.True(t, MemberRoleMember.CanContribute())
	assert.False(t, MemberRoleViewer.CanContribute())
	assert.False(t, MemberRole("owner").Valid())

	req := AddMemberRequest{UserID: "0190b9c4-6d7e-7c4a-9f31-3f2a1e5b6c7d"}
	assert.NoError(t, req.Validate())
	assert.Equal(t, MemberRoleMember, req.MemberRole())
}

func TestScheduleMeetingRequest_Validate(t *testing.T) {
	req := ScheduleMeetingRequest{Title: "Sprint review", StartAt: "2026-03-02T10:00:00Z", EndAt: "2026-03-02T10:00:00Z"}
	assert.ErrorIs(t, req.Validate(), ErrInvalidTimeRange)

	req.EndAt = "2026-03-02T11:00:00Z"
	assert.NoError(t, req.Validate())
	start, end := req.Window()
	assert.Equal(t, time.Hour, end.Sub(start))

	req.StartAt = "tomorrow"
	assert.Error(t, req.Validate())
}

func TestUploadDocumentRequest_Validate(t *testing.T) {
	req := UploadDocumentRequest{Title: "Handbook", File: strings.NewReader("x"), Size: MaxDocumentSize + 1}
	assert.ErrorIs(t, req.Validate(), ErrDocumentTooLarge)

	req.Size = 1024
	assert.NoError(t, req.Validate())

	req.File = nil
	assert.Error(t, req.Validate())
}
