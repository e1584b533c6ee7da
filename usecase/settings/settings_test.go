package settings

import (
	"context"
	"testing"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/internal/testutil"
)

func TestSaveEmail(t *testing.T) {
	ctx := context.Background()
	stored := domain.EmailSettings{Address: "me@example.com", Password: "old-secret", Enabled: true}

	tests := []struct {
		name string
		next domain.EmailSettings
		keep bool
		want domain.EmailSettings
	}{
		{
			name: "keep stored password",
			next: domain.EmailSettings{Address: " new@example.com ", Enabled: true},
			keep: true,
			want: domain.EmailSettings{Address: "new@example.com", Password: "old-secret", Enabled: true},
		},
		{
			name: "replace password",
			next: domain.EmailSettings{Address: "me@example.com", Password: "fresh", Enabled: false},
			want: domain.EmailSettings{Address: "me@example.com", Password: "fresh", Enabled: false},
		},
		{
			name: "blank password without keep clears it",
			next: domain.EmailSettings{Address: "me@example.com", Enabled: true},
			want: domain.EmailSettings{Address: "me@example.com", Enabled: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewStore(t)
			uc := New(store.Settings, nil)
			if err := uc.SaveEmail(ctx, stored, false); err != nil {
				t.Fatalf("SaveEmail(initial) error = %v", err)
			}

			if err := uc.SaveEmail(ctx, tt.next, tt.keep); err != nil {
				t.Fatalf("SaveEmail() error = %v", err)
			}
			got, err := uc.Email(ctx)
			if err != nil {
				t.Fatalf("Email() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Email() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
