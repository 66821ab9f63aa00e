package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("JWT_TTL_HOURS", "not-a-number")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreFirestore, cfg.StoreDriver)
	assert.Equal(t, 72, cfg.JWTTTLHours)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory with local auth", Config{StoreDriver: StoreMemory, AuthProvider: AuthLocal, JWTSecret: "s"}, false},
		{"local auth without secret", Config{StoreDriver: StoreMemory, AuthProvider: AuthLocal}, true},
		{"mongo without uri", Config{StoreDriver: StoreMongo, AuthProvider: AuthLocal, JWTSecret: "s"}, true},
		{"firestore without credentials", Config{StoreDriver: StoreFirestore, AuthProvider: AuthLocal, JWTSecret: "s"}, true},
		{"firebase auth without api key", Config{StoreDriver: StoreMemory, AuthProvider: AuthFirebase, FirebaseCredentialsPath: "c.json"}, true},
		{"unknown driver", Config{StoreDriver: "dynamo", AuthProvider: AuthLocal, JWTSecret: "s"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPublicImageURL(t *testing.T) {
	assert.Equal(t,
		"https://firebasestorage.googleapis.com/v0/b/bucket/o/pic.png?alt=media",
		PublicImageURL("bucket", "pic.png"))
}
