package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/docuflow/docuflow/internal/domain/entity"
)

func notificationFixture() (*mockDocumentRepo, *mockUserRepo, *mockNotificationRepo, *mockEmailSender, NotificationService) {
	docRepo := newMockDocumentRepo()
	userRepo := &mockUserRepo{users: make(map[int64]*entity.User), byRole: make(map[entity.Role][]*entity.User)}
	notificationRepo := &mockNotificationRepo{}
	emailSender := &mockEmailSender{}
	svc := NewNotificationService(docRepo, userRepo, notificationRepo, NewDocumentPolicy(), emailSender, zap.NewNop())
	return docRepo, userRepo, notificationRepo, emailSender, svc
}

func recipientIDs(notifications []*entity.Notification) []int64 {
	var out []int64
	for _, n := range notifications {
		out = append(out, n.UserID)
	}
	return out
}

func TestNotifyDocumentUpdatedRecipientOrder(t *testing.T) {
	docRepo, userRepo, notificationRepo, _, svc := notificationFixture()

	dept := int64(3)
	assignee := int64(10)
	doc := &entity.Document{
		ID: 1, CompanyID: 1, StatusID: 1, DepartmentID: &dept,
		AssignedTo: &assignee, CreatedBy: 11, DocumentNumber: "DOC-202608-0001",
	}
	docRepo.docs[1] = doc

	userRepo.users = map[int64]*entity.User{
		10: {ID: 10, CompanyID: 1, Email: "a@example.com", Roles: []entity.Role{entity.RoleRegularUser}, IsActive: true},
		11: {ID: 11, CompanyID: 1, Email: "c@example.com", Roles: []entity.Role{entity.RoleRegularUser}, IsActive: true},
	}
	userRepo.byRole = map[entity.Role][]*entity.User{
		entity.RoleSupervisor: {
			{ID: 20, CompanyID: 1, DepartmentID: &dept, Email: "s@example.com", Roles: []entity.Role{entity.RoleSupervisor}, IsActive: true},
		},
		entity.RoleAdmin: {
			{ID: 30, CompanyID: 1, Email: "adm@example.com", Roles: []entity.Role{entity.RoleAdmin}, IsActive: true},
		},
	}

	err := svc.NotifyDocumentUpdated(context.Background(), DocumentUpdatedPayload{DocumentID: 1, ActorID: 99})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := recipientIDs(notificationRepo.notifications)
	want := []int64{10, 11, 20, 30}
	if len(got) != len(want) {
		t.Fatalf("expected recipients %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected recipient %d at position %d, got %d", want[i], i, got[i])
		}
	}
}

func TestNotifyDocumentUpdatedExcludesActorAndDeduplicates(t *testing.T) {
	docRepo, userRepo, notificationRepo, _, svc := notificationFixture()

	assignee := int64(10)
	// Creator is also the assignee, and the admin is the actor.
	doc := &entity.Document{
		ID: 1, CompanyID: 1, StatusID: 1,
		AssignedTo: &assignee, CreatedBy: 10, DocumentNumber: "DOC-202608-0001",
	}
	docRepo.docs[1] = doc

	userRepo.users = map[int64]*entity.User{
		10: {ID: 10, CompanyID: 1, Email: "a@example.com", Roles: []entity.Role{entity.RoleRegularUser}, IsActive: true},
	}
	userRepo.byRole = map[entity.Role][]*entity.User{
		entity.RoleAdmin: {
			{ID: 30, CompanyID: 1, Email: "adm@example.com", Roles: []entity.Role{entity.RoleAdmin}, IsActive: true},
		},
	}

	err := svc.NotifyDocumentUpdated(context.Background(), DocumentUpdatedPayload{DocumentID: 1, ActorID: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := recipientIDs(notificationRepo.notifications)
	if len(got) != 1 || got[0] != 10 {
		t.Errorf("expected a single notification to user 10, got %v", got)
	}
}

func TestNotifyDocumentUpdatedSkipsInactiveAndUnauthorized(t *testing.T) {
	docRepo, userRepo, notificationRepo, _, svc := notificationFixture()

	assignee := int64(10)
	doc := &entity.Document{
		ID: 1, CompanyID: 1, StatusID: 1,
		AssignedTo: &assignee, CreatedBy: 11, DocumentNumber: "DOC-202608-0001",
	}
	docRepo.docs[1] = doc

	userRepo.users = map[int64]*entity.User{
		// Inactive assignee is skipped.
		10: {ID: 10, CompanyID: 1, Email: "a@example.com", Roles: []entity.Role{entity.RoleRegularUser}, IsActive: false},
		// Creator from another tenant fails the view policy.
		11: {ID: 11, CompanyID: 2, Email: "c@example.com", Roles: []entity.Role{entity.RoleRegularUser}, IsActive: true},
	}
	userRepo.byRole = map[entity.Role][]*entity.User{
		entity.RoleAdmin: {
			{ID: 30, CompanyID: 1, Email: "adm@example.com", Roles: []entity.Role{entity.RoleAdmin}, IsActive: true},
		},
	}

	err := svc.NotifyDocumentUpdated(context.Background(), DocumentUpdatedPayload{DocumentID: 1, ActorID: 99})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := recipientIDs(notificationRepo.notifications)
	if len(got) != 1 || got[0] != 30 {
		t.Errorf("expected only the admin, got %v", got)
	}
}

func TestNotifyDocumentUpdatedDeliveryFailureIsIsolated(t *testing.T) {
	docRepo, userRepo, notificationRepo, emailSender, svc := notificationFixture()

	assignee := int64(10)
	doc := &entity.Document{
		ID: 1, CompanyID: 1, StatusID: 1,
		AssignedTo: &assignee, CreatedBy: 11, DocumentNumber: "DOC-202608-0001",
	}
	docRepo.docs[1] = doc

	userRepo.users = map[int64]*entity.User{
		10: {ID: 10, CompanyID: 1, Email: "a@example.com", Roles: []entity.Role{entity.RoleRegularUser}, IsActive: true},
		11: {ID: 11, CompanyID: 1, Email: "c@example.com", Roles: []entity.Role{entity.RoleRegularUser}, IsActive: true},
	}

	emailSender.sendErr = func(to string) error {
		if to == "a@example.com" {
			return errors.New("smtp refused")
		}
		return nil
	}

	err := svc.NotifyDocumentUpdated(context.Background(), DocumentUpdatedPayload{DocumentID: 1, ActorID: 99})
	if err != nil {
		t.Fatalf("one failed delivery must not fail the batch: %v", err)
	}

	// Both rows exist; the failed one is marked, the other delivered.
	if len(notificationRepo.notifications) != 2 {
		t.Fatalf("expected 2 notification rows, got %d", len(notificationRepo.notifications))
	}
	if len(notificationRepo.failed) != 1 {
		t.Errorf("expected 1 failed notification, got %d", len(notificationRepo.failed))
	}
	if len(notificationRepo.sent) != 1 {
		t.Errorf("expected 1 sent notification, got %d", len(notificationRepo.sent))
	}
}

func TestNotifyDocumentUpdatedMissingDocumentFails(t *testing.T) {
	_, _, _, _, svc := notificationFixture()

	err := svc.NotifyDocumentUpdated(context.Background(), DocumentUpdatedPayload{DocumentID: 404})
	if err == nil {
		t.Fatal("expected error so the queue retries")
	}
}

func TestNotifyStatusChanged(t *testing.T) {
	assignee := int64(10)

	tests := []struct {
		name      string
		doc       *entity.Document
		actorID   int64
		wantCount int
	}{
		{
			name: "assignee is notified",
			doc: &entity.Document{
				ID: 1, CompanyID: 1, StatusID: 2,
				AssignedTo: &assignee, DocumentNumber: "DOC-202608-0001",
			},
			actorID:   99,
			wantCount: 1,
		},
		{
			name: "no assignee means no notification",
			doc: &entity.Document{
				ID: 1, CompanyID: 1, StatusID: 2, DocumentNumber: "DOC-202608-0001",
			},
			actorID:   99,
			wantCount: 0,
		},
		{
			name: "assignee acting on own document is skipped",
			doc: &entity.Document{
				ID: 1, CompanyID: 1, StatusID: 2,
				AssignedTo: &assignee, DocumentNumber: "DOC-202608-0001",
			},
			actorID:   assignee,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docRepo, userRepo, notificationRepo, _, svc := notificationFixture()
			docRepo.docs[tt.doc.ID] = tt.doc
			userRepo.users = map[int64]*entity.User{
				10: {ID: 10, CompanyID: 1, Email: "a@example.com", Roles: []entity.Role{entity.RoleRegularUser}, IsActive: true},
			}

			err := svc.NotifyStatusChanged(context.Background(), StatusChangedPayload{
				DocumentID: tt.doc.ID,
				ActorID:    tt.actorID,
				OldStatus:  "Recibido",
				NewStatus:  "En Proceso",
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(notificationRepo.notifications) != tt.wantCount {
				t.Errorf("expected %d notifications, got %d", tt.wantCount, len(notificationRepo.notifications))
			}
			if tt.wantCount == 1 {
				n := notificationRepo.notifications[0]
				if n.Type != entity.NotificationStatusChange {
					t.Errorf("expected type %q, got %q", entity.NotificationStatusChange, n.Type)
				}
			}
		})
	}
}
