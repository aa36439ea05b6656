package vault

import (
	"errors"
	"testing"
)

func TestCreateServiceRequiresUser(t *testing.T) {
	v, _ := newTestVault(t)
	if _, err := v.CreateService("missing-uid", "mail", ""); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("CreateService err = %v, want ErrUserNotFound", err)
	}
	user := registerTestUser(t, v, "alejandra")
	if _, err := v.CreateService(user.ID, "", ""); err == nil {
		t.Error("CreateService succeeded with empty name")
	}
}

func TestServiceIDCarriesOwner(t *testing.T) {
	v, _ := newTestVault(t)
	user := registerTestUser(t, v, "alejandra")
	svc, err := v.CreateService(user.ID, "mail", "icons/mail.png")
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	if got, want := svc.ID[:len(user.ID)+1], user.ID+"_"; got != want {
		t.Errorf("service ID prefix = %q, want %q", got, want)
	}
	if svc.Icon != "icons/mail.png" {
		t.Errorf("Icon = %q, want the stored path reference", svc.Icon)
	}
}

func TestListServicesOrderedAndScoped(t *testing.T) {
	v, _ := newTestVault(t)
	alejandra := registerTestUser(t, v, "alejandra")
	beto := registerTestUser(t, v, "beto")

	for _, name := range []string{"mail", "bank", "forum"} {
		if _, err := v.CreateService(alejandra.ID, name, ""); err != nil {
			t.Fatalf("CreateService(%q): %v", name, err)
		}
	}
	if _, err := v.CreateService(beto.ID, "mail", ""); err != nil {
		t.Fatalf("CreateService for second user: %v", err)
	}

	services := v.ListServices(alejandra.ID)
	if len(services) != 3 {
		t.Fatalf("len(services) = %d, want 3", len(services))
	}
	want := []string{"mail", "bank", "forum"}
	for i, svc := range services {
		if svc.Name != want[i] {
			t.Errorf("services[%d].Name = %q, want %q (creation order)", i, svc.Name, want[i])
		}
		if svc.UID != alejandra.ID {
			t.Errorf("services[%d] belongs to %q", i, svc.UID)
		}
	}
}

func TestDeleteServiceCascades(t *testing.T) {
	v, _ := newTestVault(t)
	user := registerTestUser(t, v, "alejandra")
	mail, err := v.CreateService(user.ID, "mail", "")
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	bank, err := v.CreateService(user.ID, "bank", "")
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	for _, svcID := range []string{mail.ID, mail.ID, bank.ID} {
		if _, err := v.CreateAccount(CreateAccountParams{
			UID:       user.ID,
			ServiceID: svcID,
			Username:  "abc",
			Password:  "cab",
		}); err != nil {
			t.Fatalf("CreateAccount: %v", err)
		}
	}

	if err := v.DeleteService(user.ID, mail.ID); err != nil {
		t.Fatalf("DeleteService: %v", err)
	}
	if got := v.CountAccounts(user.ID); got != 1 {
		t.Errorf("CountAccounts after cascade = %d, want 1", got)
	}
	if _, err := v.ListAccounts(user.ID, mail.ID); !errors.Is(err, ErrServiceNotFound) {
		t.Errorf("ListAccounts on deleted service err = %v, want ErrServiceNotFound", err)
	}
	remaining, err := v.ListAccounts(user.ID, bank.ID)
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("bank accounts = %d, want 1", len(remaining))
	}
}

func TestDeleteServiceWrongOwner(t *testing.T) {
	v, _ := newTestVault(t)
	alejandra := registerTestUser(t, v, "alejandra")
	beto := registerTestUser(t, v, "beto")
	svc, err := v.CreateService(alejandra.ID, "mail", "")
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	if err := v.DeleteService(beto.ID, svc.ID); !errors.Is(err, ErrServiceNotFound) {
		t.Errorf("DeleteService by non-owner err = %v, want ErrServiceNotFound", err)
	}
}
