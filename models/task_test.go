package models

import "testing"

func TestClosedEnums(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusInProgress, StatusCompleted} {
		if !s.Valid() {
			t.Errorf("status %q should be valid", s)
		}
	}
	for _, s := range []Status{"", "done", "PENDING", "archived"} {
		if s.Valid() {
			t.Errorf("status %q should be invalid", s)
		}
	}
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		if !p.Valid() {
			t.Errorf("priority %q should be valid", p)
		}
	}
	for _, p := range []Priority{"", "urgent", "High"} {
		if p.Valid() {
			t.Errorf("priority %q should be invalid", p)
		}
	}
	for _, r := range []Role{RoleUser, RolePremium, RoleAdmin} {
		if !r.Valid() {
			t.Errorf("role %q should be valid", r)
		}
	}
	if Role("superadmin").Valid() {
		t.Error("unknown roles must be invalid")
	}
}

func TestBasicProjection(t *testing.T) {
	assignee := "u2"
	task := Task{
		Id:          "t1",
		Title:       "Fix Bug",
		Description: "secret details",
		Status:      StatusPending,
		Priority:    PriorityHigh,
		IsPublic:    true,
		OwnerId:     "u1",
		AssignedTo:  &assignee,
	}
	basic := task.Basic()
	if basic.Id != "t1" || basic.Title != "Fix Bug" || basic.Status != StatusPending || basic.Priority != PriorityHigh {
		t.Errorf("basic projection lost fields: %+v", basic)
	}
}
