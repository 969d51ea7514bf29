package routing

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"todo-api/internal/managers"
	"todo-api/internal/managers/mocks"
	"todo-api/internal/schemas"
)

var userColumns = []string{
	"user_id", "name", "surname", "short_name", "email", "gender",
	"base_category_id", "is_admin", "is_verified", "is_active", "password_hash", "created_at",
}

// testAccount is the fixture behind most authenticated requests.
type testAccount struct {
	ID             int64
	Name           string
	Surname        string
	ShortName      string
	Email          string
	Gender         string
	BaseCategoryID int64
	IsAdmin        bool
	Password       string
	PasswordHash   []byte
	CreatedAt      time.Time
}

func newTestAccount() testAccount {
	account := testAccount{
		ID:             123456,
		Name:           "Test",
		Surname:        "User",
		ShortName:      "testUser",
		Email:          "test@example.com",
		Gender:         "male",
		BaseCategoryID: 654321,
		Password:       "test.Password123",
		CreatedAt:      time.Date(2024, 1, 30, 20, 17, 9, 0, time.UTC),
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
	account.PasswordHash = hash

	return account
}

func accountRow(account testAccount) *pgxmock.Rows {
	return pgxmock.NewRows(userColumns).AddRow(account.ID, account.Name, account.Surname, account.ShortName,
		account.Email, account.Gender, account.BaseCategoryID, account.IsAdmin, false, true,
		account.PasswordHash, account.CreatedAt)
}

func (account testAccount) record() *schemas.User {
	return &schemas.User{
		ID:             account.ID,
		Name:           account.Name,
		Surname:        account.Surname,
		ShortName:      account.ShortName,
		Email:          account.Email,
		Gender:         account.Gender,
		BaseCategoryID: account.BaseCategoryID,
		IsAdmin:        account.IsAdmin,
		PasswordHash:   account.PasswordHash,
		CreatedAt:      account.CreatedAt,
	}
}

func setupMocksWithMail(t *testing.T, mailErr error) (*mocks.MockDatabaseManager, managers.JWTMgr, *mocks.MockMailManager) {
	poolMock, err := pgxmock.NewPool()
	if err != nil {
		log.Errorf("Error creating mock database pool: %v", err)
	}

	databaseMgrMock := &mocks.MockDatabaseManager{}
	databaseMgrMock.On("GetPool").Return(poolMock)

	t.Setenv("ENVIRONMENT", "test")
	jwtMgr := managers.NewJWTManager([]byte("router-test-secret"), 15*time.Minute, 24*time.Hour)

	mailMgrMock := &mocks.MockMailManager{}
	mailMgrMock.On("SendVerifyCodeMail", mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(mailErr)

	return databaseMgrMock, jwtMgr, mailMgrMock
}

func setupMocks(t *testing.T) (*mocks.MockDatabaseManager, managers.JWTMgr, *mocks.MockMailManager) {
	return setupMocksWithMail(t, nil)
}

func startServer(t *testing.T, databaseMgrMock *mocks.MockDatabaseManager, jwtMgr managers.JWTMgr, mailMgrMock *mocks.MockMailManager) (*httptest.Server, pgxmock.PgxPoolIface) {
	router := InitRouter(databaseMgrMock, mailMgrMock, jwtMgr)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, databaseMgrMock.GetPool().(pgxmock.PgxPoolIface)
}

func expectAuthLookup(poolMock pgxmock.PgxPoolIface, account testAccount) {
	poolMock.ExpectQuery("SELECT user_id, name, surname").WithArgs(account.ShortName).WillReturnRows(accountRow(account))
}

func checkExpectations(t *testing.T, poolMock pgxmock.PgxPoolIface) {
	t.Helper()
	if err := poolMock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestMetadata(t *testing.T) {
	databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
	server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

	expect := httpexpect.Default(t, server.URL)
	response := expect.GET("/").Expect().Status(http.StatusOK)
	response.JSON().Object().HasValue("apiName", "Todo API")

	checkExpectations(t, poolMock)
}

func TestHealth(t *testing.T) {
	databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
	server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

	poolMock.ExpectPing()

	expect := httpexpect.Default(t, server.URL)
	expect.GET("/health").Expect().Status(http.StatusOK)

	checkExpectations(t, poolMock)
}

func TestUserRegistration(t *testing.T) {
	account := newTestAccount()

	registrationBody := map[string]interface{}{
		"name":      account.Name,
		"surname":   account.Surname,
		"shortName": account.ShortName,
		"email":     account.Email,
		"gender":    account.Gender,
		"password":  account.Password,
	}

	t.Run("ValidRegistration", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		poolMock.ExpectBegin()
		poolMock.ExpectQuery("SELECT short_name, email").WithArgs(account.ShortName, account.Email).
			WillReturnRows(pgxmock.NewRows([]string{"short_name", "email"}))
		poolMock.ExpectQuery("SELECT EXISTS").WithArgs(pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		poolMock.ExpectExec("INSERT INTO todo_schema.users").
			WithArgs(pgxmock.AnyArg(), account.Name, account.Surname, account.ShortName, account.Email,
				account.Gender, schemas.BaseCategorySentinel, false, false, true, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		poolMock.ExpectQuery("SELECT EXISTS").WithArgs(pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		poolMock.ExpectExec("INSERT INTO todo_schema.categories").
			WithArgs(pgxmock.AnyArg(), schemas.BaseCategoryName, schemas.BaseCategoryColor, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		poolMock.ExpectExec("UPDATE todo_schema.users SET base_category_id").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		poolMock.ExpectCommit()

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users").WithJSON(registrationBody).Expect().Status(http.StatusCreated)
		body := response.JSON().Object()
		body.Value("token").String().NotEmpty()
		body.Value("refreshToken").String().NotEmpty()

		checkExpectations(t, poolMock)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		poolMock.ExpectBegin()
		poolMock.ExpectQuery("SELECT short_name, email").WithArgs(account.ShortName, account.Email).
			WillReturnRows(pgxmock.NewRows([]string{"short_name", "email"}).AddRow("somebodyElse", account.Email))
		poolMock.ExpectRollback()

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users").WithJSON(registrationBody).Expect().Status(http.StatusBadRequest)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-003")

		checkExpectations(t, poolMock)
	})

	t.Run("DuplicateShortName", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		poolMock.ExpectBegin()
		poolMock.ExpectQuery("SELECT short_name, email").WithArgs(account.ShortName, account.Email).
			WillReturnRows(pgxmock.NewRows([]string{"short_name", "email"}).AddRow(account.ShortName, "somebody@else.com"))
		poolMock.ExpectRollback()

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users").WithJSON(registrationBody).Expect().Status(http.StatusBadRequest)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-002")

		checkExpectations(t, poolMock)
	})

	// A duplicate that slips past the conflict check and only surfaces as a
	// unique violation on insert still answers like a duplicate, not a 500.
	t.Run("DuplicateRace", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		poolMock.ExpectBegin()
		poolMock.ExpectQuery("SELECT short_name, email").WithArgs(account.ShortName, account.Email).
			WillReturnRows(pgxmock.NewRows([]string{"short_name", "email"}))
		poolMock.ExpectQuery("SELECT EXISTS").WithArgs(pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		poolMock.ExpectExec("INSERT INTO todo_schema.users").
			WithArgs(pgxmock.AnyArg(), account.Name, account.Surname, account.ShortName, account.Email,
				account.Gender, schemas.BaseCategorySentinel, false, false, true, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})
		poolMock.ExpectRollback()

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users").WithJSON(registrationBody).Expect().Status(http.StatusBadRequest)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-003")

		checkExpectations(t, poolMock)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		invalidBody := map[string]interface{}{
			"name":      account.Name,
			"surname":   account.Surname,
			"shortName": account.ShortName,
			"email":     "not-an-email",
			"gender":    account.Gender,
			"password":  account.Password,
		}

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users").WithJSON(invalidBody).Expect().Status(http.StatusBadRequest)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-001")

		checkExpectations(t, poolMock)
	})
}

func TestUserLogin(t *testing.T) {
	account := newTestAccount()

	loginBody := map[string]interface{}{
		"email":    account.Email,
		"password": account.Password,
	}

	invalidCredentialsBody := map[string]interface{}{
		"error": map[string]interface{}{
			"code":    "ERR-012",
			"message": "Could not validate credentials",
		},
	}

	t.Run("ValidLogin", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		poolMock.ExpectQuery("SELECT user_id, name, surname").WithArgs(account.Email).WillReturnRows(accountRow(account))

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users/login").WithJSON(loginBody).Expect().Status(http.StatusOK)
		body := response.JSON().Object()
		body.Value("token").String().NotEmpty()
		body.Value("refreshToken").String().NotEmpty()

		checkExpectations(t, poolMock)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		poolMock.ExpectQuery("SELECT user_id, name, surname").WithArgs(account.Email).
			WillReturnRows(pgxmock.NewRows(userColumns))

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users/login").WithJSON(loginBody).Expect().Status(http.StatusUnauthorized)
		response.JSON().IsEqual(invalidCredentialsBody)

		checkExpectations(t, poolMock)
	})

	// A wrong password must be indistinguishable from an unknown email.
	t.Run("WrongPassword", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		poolMock.ExpectQuery("SELECT user_id, name, surname").WithArgs(account.Email).WillReturnRows(accountRow(account))

		wrongBody := map[string]interface{}{
			"email":    account.Email,
			"password": "wrong.Password123",
		}

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users/login").WithJSON(wrongBody).Expect().Status(http.StatusUnauthorized)
		response.JSON().IsEqual(invalidCredentialsBody)

		checkExpectations(t, poolMock)
	})
}

func TestTokenRefresh(t *testing.T) {
	account := newTestAccount()

	t.Run("ValidRefresh", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		refreshToken, err := jwtMgr.GenerateJWT(account.record(), schemas.RefreshTokenType)
		if err != nil {
			t.Fatalf("generating refresh token: %v", err)
		}

		poolMock.ExpectQuery("SELECT user_id, name, surname").WithArgs(account.ShortName).WillReturnRows(accountRow(account))

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users/refresh").
			WithJSON(map[string]interface{}{"refreshToken": refreshToken}).
			Expect().Status(http.StatusOK)
		response.JSON().Object().Value("token").String().NotEmpty()

		checkExpectations(t, poolMock)
	})

	// Access tokens must not pass as refresh tokens.
	t.Run("AccessTokenRejected", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		accessToken, err := jwtMgr.GenerateJWT(account.record(), schemas.AccessTokenType)
		if err != nil {
			t.Fatalf("generating access token: %v", err)
		}

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users/refresh").
			WithJSON(map[string]interface{}{"refreshToken": accessToken}).
			Expect().Status(http.StatusUnauthorized)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-013")

		checkExpectations(t, poolMock)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users/refresh").
			WithJSON(map[string]interface{}{"refreshToken": "NonsenseToken"}).
			Expect().Status(http.StatusUnauthorized)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-012")

		checkExpectations(t, poolMock)
	})
}

func TestVerifyCodeRequest(t *testing.T) {
	email := "fresh@example.com"

	t.Run("CodeIssued", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		poolMock.ExpectQuery("SELECT EXISTS").WithArgs(email).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		poolMock.ExpectBegin()
		poolMock.ExpectExec("INSERT INTO todo_schema.verify_codes").WithArgs(email, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		poolMock.ExpectCommit()

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users/verify-code").
			WithJSON(map[string]interface{}{"email": email}).
			Expect().Status(http.StatusOK)
		response.JSON().Object().HasValue("success", "ok")

		checkExpectations(t, poolMock)
		mailMgrMock.AssertCalled(t, "SendVerifyCodeMail", email, email, mock.AnythingOfType("string"))
	})

	t.Run("RegisteredEmail", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		poolMock.ExpectQuery("SELECT EXISTS").WithArgs(email).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users/verify-code").
			WithJSON(map[string]interface{}{"email": email}).
			Expect().Status(http.StatusBadRequest)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-003")

		checkExpectations(t, poolMock)
	})

	t.Run("RecipientRejected", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocksWithMail(t, managers.ErrRecipientRejected)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		poolMock.ExpectQuery("SELECT EXISTS").WithArgs(email).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		poolMock.ExpectBegin()
		poolMock.ExpectExec("INSERT INTO todo_schema.verify_codes").WithArgs(email, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		poolMock.ExpectCommit()

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users/verify-code").
			WithJSON(map[string]interface{}{"email": email}).
			Expect().Status(http.StatusBadRequest)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-007")

		checkExpectations(t, poolMock)
	})
}

func TestVerifyCodeConfirm(t *testing.T) {
	email := "fresh@example.com"
	code := int32(123456)

	confirmBody := map[string]interface{}{
		"email": email,
		"code":  code,
	}

	// A matching code is consumed on first use: the same confirmation
	// replayed finds no pending code anymore.
	t.Run("SingleConsumption", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		poolMock.ExpectBegin()
		poolMock.ExpectQuery("SELECT code FROM todo_schema.verify_codes").WithArgs(email).
			WillReturnRows(pgxmock.NewRows([]string{"code"}).AddRow(code))
		poolMock.ExpectExec("DELETE FROM todo_schema.verify_codes").WithArgs(email).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		poolMock.ExpectCommit()

		poolMock.ExpectBegin()
		poolMock.ExpectQuery("SELECT code FROM todo_schema.verify_codes").WithArgs(email).
			WillReturnRows(pgxmock.NewRows([]string{"code"}))
		poolMock.ExpectRollback()

		expect := httpexpect.Default(t, server.URL)
		first := expect.PUT("/api/users/verify-code").WithJSON(confirmBody).Expect().Status(http.StatusOK)
		first.JSON().Object().HasValue("success", "ok")

		second := expect.PUT("/api/users/verify-code").WithJSON(confirmBody).Expect().Status(http.StatusBadRequest)
		second.JSON().Object().Value("error").Object().HasValue("code", "ERR-007")

		checkExpectations(t, poolMock)
	})

	t.Run("WrongCode", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		poolMock.ExpectBegin()
		poolMock.ExpectQuery("SELECT code FROM todo_schema.verify_codes").WithArgs(email).
			WillReturnRows(pgxmock.NewRows([]string{"code"}).AddRow(int32(654321)))
		poolMock.ExpectRollback()

		expect := httpexpect.Default(t, server.URL)
		response := expect.PUT("/api/users/verify-code").WithJSON(confirmBody).Expect().Status(http.StatusBadRequest)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-008")

		checkExpectations(t, poolMock)
	})
}

func TestCategoryAuthorization(t *testing.T) {
	account := newTestAccount()

	categoryColumns := []string{"category_id", "name", "color", "user_id", "created_at"}

	t.Run("OwnedCategory", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		token, _ := jwtMgr.GenerateJWT(account.record(), schemas.AccessTokenType)

		expectAuthLookup(poolMock, account)
		poolMock.ExpectQuery("SELECT category_id, name, color").WithArgs(int64(777777)).
			WillReturnRows(pgxmock.NewRows(categoryColumns).
				AddRow(int64(777777), "Work", "#FF0000", account.ID, account.CreatedAt))
		poolMock.ExpectQuery("SELECT task_id, name, description").WithArgs(int64(777777)).
			WillReturnRows(pgxmock.NewRows([]string{"task_id", "name", "description", "priority", "completed", "user_id", "category_id", "created_at"}))

		expect := httpexpect.Default(t, server.URL)
		response := expect.GET("/api/categories/777777").
			WithHeader("Authorization", "Bearer "+token).
			Expect().Status(http.StatusOK)
		response.JSON().Object().HasValue("name", "Work")

		checkExpectations(t, poolMock)
	})

	// A category owned by someone else is forbidden, not hidden.
	t.Run("ForeignCategory", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		token, _ := jwtMgr.GenerateJWT(account.record(), schemas.AccessTokenType)

		expectAuthLookup(poolMock, account)
		poolMock.ExpectQuery("SELECT category_id, name, color").WithArgs(int64(777777)).
			WillReturnRows(pgxmock.NewRows(categoryColumns).
				AddRow(int64(777777), "Work", "#FF0000", int64(999999), account.CreatedAt))

		expect := httpexpect.Default(t, server.URL)
		response := expect.GET("/api/categories/777777").
			WithHeader("Authorization", "Bearer "+token).
			Expect().Status(http.StatusForbidden)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-015")

		checkExpectations(t, poolMock)
	})

	t.Run("MissingCategory", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		token, _ := jwtMgr.GenerateJWT(account.record(), schemas.AccessTokenType)

		expectAuthLookup(poolMock, account)
		poolMock.ExpectQuery("SELECT category_id, name, color").WithArgs(int64(777777)).
			WillReturnRows(pgxmock.NewRows(categoryColumns))

		expect := httpexpect.Default(t, server.URL)
		response := expect.GET("/api/categories/777777").
			WithHeader("Authorization", "Bearer "+token).
			Expect().Status(http.StatusNotFound)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-005")

		checkExpectations(t, poolMock)
	})

	// The base category is reported as absent on edit, never as forbidden.
	t.Run("BaseCategoryEdit", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		token, _ := jwtMgr.GenerateJWT(account.record(), schemas.AccessTokenType)

		expectAuthLookup(poolMock, account)
		poolMock.ExpectQuery("SELECT category_id, name, color").WithArgs(account.BaseCategoryID).
			WillReturnRows(pgxmock.NewRows(categoryColumns).
				AddRow(account.BaseCategoryID, schemas.BaseCategoryName, schemas.BaseCategoryColor, account.ID, account.CreatedAt))

		expect := httpexpect.Default(t, server.URL)
		response := expect.PUT("/api/categories/654321").
			WithHeader("Authorization", "Bearer "+token).
			WithJSON(map[string]interface{}{"name": "Renamed", "color": "#00FF00"}).
			Expect().Status(http.StatusNotFound)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-005")

		checkExpectations(t, poolMock)
	})

	t.Run("NoToken", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		expect := httpexpect.Default(t, server.URL)
		response := expect.GET("/api/categories").Expect().Status(http.StatusUnauthorized)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-014")

		checkExpectations(t, poolMock)
	})
}

func TestTaskAuthorization(t *testing.T) {
	account := newTestAccount()

	taskColumns := []string{"task_id", "name", "description", "priority", "completed", "user_id", "category_id", "created_at"}
	categoryColumns := []string{"category_id", "name", "color", "user_id", "created_at"}

	t.Run("OwnedTask", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		token, _ := jwtMgr.GenerateJWT(account.record(), schemas.AccessTokenType)

		expectAuthLookup(poolMock, account)
		poolMock.ExpectQuery("SELECT task_id, name, description").WithArgs(int64(888888)).
			WillReturnRows(pgxmock.NewRows(taskColumns).
				AddRow(int64(888888), "Buy milk", "", schemas.PriorityLow, false, account.ID, account.BaseCategoryID, account.CreatedAt))

		expect := httpexpect.Default(t, server.URL)
		response := expect.GET("/api/tasks/888888").
			WithHeader("Authorization", "Bearer "+token).
			Expect().Status(http.StatusOK)
		response.JSON().Object().HasValue("name", "Buy milk")

		checkExpectations(t, poolMock)
	})

	// Like categories, someone else's task is forbidden rather than hidden.
	t.Run("ForeignTask", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		token, _ := jwtMgr.GenerateJWT(account.record(), schemas.AccessTokenType)

		expectAuthLookup(poolMock, account)
		poolMock.ExpectQuery("SELECT task_id, name, description").WithArgs(int64(888888)).
			WillReturnRows(pgxmock.NewRows(taskColumns).
				AddRow(int64(888888), "Buy milk", "", schemas.PriorityLow, false, int64(999999), int64(424242), account.CreatedAt))

		expect := httpexpect.Default(t, server.URL)
		response := expect.GET("/api/tasks/888888").
			WithHeader("Authorization", "Bearer "+token).
			Expect().Status(http.StatusForbidden)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-015")

		checkExpectations(t, poolMock)
	})

	t.Run("MissingTask", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		token, _ := jwtMgr.GenerateJWT(account.record(), schemas.AccessTokenType)

		expectAuthLookup(poolMock, account)
		poolMock.ExpectQuery("SELECT task_id, name, description").WithArgs(int64(888888)).
			WillReturnRows(pgxmock.NewRows(taskColumns))

		expect := httpexpect.Default(t, server.URL)
		response := expect.GET("/api/tasks/888888").
			WithHeader("Authorization", "Bearer "+token).
			Expect().Status(http.StatusNotFound)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-006")

		checkExpectations(t, poolMock)
	})

	// Creating a task inside a category owned by someone else is rejected
	// before any write happens.
	t.Run("CreateIntoForeignCategory", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		token, _ := jwtMgr.GenerateJWT(account.record(), schemas.AccessTokenType)

		expectAuthLookup(poolMock, account)
		poolMock.ExpectQuery("SELECT category_id, name, color").WithArgs(int64(424242)).
			WillReturnRows(pgxmock.NewRows(categoryColumns).
				AddRow(int64(424242), "Work", "#FF0000", int64(999999), account.CreatedAt))

		taskBody := map[string]interface{}{
			"name":       "Buy milk",
			"priority":   schemas.PriorityLow,
			"categoryId": 424242,
			"createdAt":  account.CreatedAt.Format(time.RFC3339),
		}

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/tasks").
			WithHeader("Authorization", "Bearer "+token).
			WithJSON(taskBody).
			Expect().Status(http.StatusForbidden)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-015")

		checkExpectations(t, poolMock)
	})
}

func TestAdminGate(t *testing.T) {
	admin := newTestAccount()
	admin.IsAdmin = true
	admin.ShortName = "adminUser"
	admin.Email = "admin@example.com"

	regular := newTestAccount()

	t.Run("NonAdminRejected", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		token, _ := jwtMgr.GenerateJWT(regular.record(), schemas.AccessTokenType)

		expectAuthLookup(poolMock, regular)

		expect := httpexpect.Default(t, server.URL)
		response := expect.GET("/api/admin/users").
			WithHeader("Authorization", "Bearer "+token).
			Expect().Status(http.StatusForbidden)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-015")

		checkExpectations(t, poolMock)
	})

	t.Run("ToggleVerified", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		token, _ := jwtMgr.GenerateJWT(admin.record(), schemas.AccessTokenType)

		expectAuthLookup(poolMock, admin)
		poolMock.ExpectQuery("SELECT user_id, name, surname").WithArgs(regular.ID).WillReturnRows(accountRow(regular))
		poolMock.ExpectBegin()
		poolMock.ExpectExec("UPDATE todo_schema.users SET is_verified").WithArgs(regular.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		poolMock.ExpectCommit()

		expect := httpexpect.Default(t, server.URL)
		response := expect.PUT("/api/admin/users/123456/verified").
			WithHeader("Authorization", "Bearer "+token).
			Expect().Status(http.StatusOK)
		response.JSON().Object().HasValue("isVerified", true)

		checkExpectations(t, poolMock)
	})

	// Admin accounts can never be targets of admin operations.
	t.Run("AdminTargetRejected", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		token, _ := jwtMgr.GenerateJWT(admin.record(), schemas.AccessTokenType)

		otherAdmin := newTestAccount()
		otherAdmin.ID = 222222
		otherAdmin.IsAdmin = true

		expectAuthLookup(poolMock, admin)
		poolMock.ExpectQuery("SELECT user_id, name, surname").WithArgs(otherAdmin.ID).WillReturnRows(accountRow(otherAdmin))

		expect := httpexpect.Default(t, server.URL)
		response := expect.PUT("/api/admin/users/222222/admin").
			WithHeader("Authorization", "Bearer "+token).
			Expect().Status(http.StatusForbidden)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-015")

		checkExpectations(t, poolMock)
	})

	t.Run("MissingTarget", func(t *testing.T) {
		databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)
		server, poolMock := startServer(t, databaseMgrMock, jwtMgr, mailMgrMock)

		token, _ := jwtMgr.GenerateJWT(admin.record(), schemas.AccessTokenType)

		expectAuthLookup(poolMock, admin)
		poolMock.ExpectQuery("SELECT user_id, name, surname").WithArgs(int64(333333)).
			WillReturnRows(pgxmock.NewRows(userColumns))

		expect := httpexpect.Default(t, server.URL)
		response := expect.PUT("/api/admin/users/333333/active").
			WithHeader("Authorization", "Bearer "+token).
			Expect().Status(http.StatusNotFound)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-004")

		checkExpectations(t, poolMock)
	})
}
