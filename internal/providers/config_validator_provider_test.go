package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"drinkaware/internal/structures"
)

func validConfig() *structures.Config {
	return &structures.Config{
		Accounts: []structures.AccountConfig{
			{ID: "acc-1", Name: "Test", AccessToken: "tok"},
		},
		WebServer: structures.Server{Host: "127.0.0.1", Port: 8080},
		Polling:   structures.PollingConfig{Interval: time.Hour},
		Persistence: structures.Persistence{
			FilePath:     "/tmp/state.bin",
			SaveInterval: time.Minute,
		},
		Logger: structures.LoggerConfig{Level: "info", Mode: 420, Dir: "/tmp"},
	}
}

func TestValidConfigPasses(t *testing.T) {
	assert.NoError(t, NewCnfValidator(validConfig()).Validate())
}

func TestValidatorRejectsDuplicateAccountIds(t *testing.T) {
	conf := validConfig()
	conf.Accounts = append(conf.Accounts, structures.AccountConfig{
		ID: "acc-1", Name: "Clone", AccessToken: "tok2",
	})
	err := NewCnfValidator(conf).Validate()
	assert.ErrorContains(t, err, "duplicate account id")
}

func TestValidatorRejectsAccountWithoutAnyToken(t *testing.T) {
	conf := validConfig()
	conf.Accounts[0].AccessToken = ""
	conf.Accounts[0].RefreshToken = ""
	err := NewCnfValidator(conf).Validate()
	assert.ErrorContains(t, err, "no access token and no refresh token")
}

func TestValidatorAllowsRefreshTokenOnly(t *testing.T) {
	conf := validConfig()
	conf.Accounts[0].AccessToken = ""
	conf.Accounts[0].RefreshToken = "ref"
	assert.NoError(t, NewCnfValidator(conf).Validate())
}

func TestValidatorRejectsBadLogLevel(t *testing.T) {
	conf := validConfig()
	conf.Logger.Level = "loud"
	assert.Error(t, NewCnfValidator(conf).Validate())
}

func TestValidatorRejectsMissingWebServer(t *testing.T) {
	conf := validConfig()
	conf.WebServer.Port = 0
	assert.Error(t, NewCnfValidator(conf).Validate())
}
