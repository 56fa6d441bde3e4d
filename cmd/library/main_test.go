package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"libraryapi/pkg/catalog"
	"libraryapi/pkg/database"
)

func setupTest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(testDB))
	db = testDB
	svc = catalog.NewService(testDB)
}

func addTestBook(t *testing.T, serialNumber string) {
	_, err := svc.AddBook(serialNumber, "Zmija", "Andrzej", "Sapkowski")
	require.NoError(t, err)
}

func addTestUser(t *testing.T, libraryCard string) {
	_, err := svc.AddUser(libraryCard, "Jan", "Kowalski")
	require.NoError(t, err)
}

func TestAddBookHandler(t *testing.T) {
	setupTest(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST",
		"/api/v1/books?serial_number=123456&title=Zmija&author_firstname=Andrzej&author_lastname=Sapkowski", nil)

	addBook(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "123456", response["serial_number"])
	assert.Equal(t, "Zmija", response["title"])
	assert.Equal(t, "Andrzej Sapkowski", response["author"])
	assert.Equal(t, true, response["available"])
}

func TestAddBookHandlerInvalidSerial(t *testing.T) {
	setupTest(t)

	for _, serial := range []string{"123", "1234567899999", "12a456"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("POST",
			"/api/v1/books?serial_number="+serial+"&title=Zmija&author_firstname=Andrzej&author_lastname=Sapkowski", nil)

		addBook(c)

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	}

	books, err := svc.ListBooks()
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestAddBookHandlerDuplicate(t *testing.T) {
	setupTest(t)
	addTestBook(t, "123456")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST",
		"/api/v1/books?serial_number=123456&title=Zmija&author_firstname=Andrzej&author_lastname=Sapkowski", nil)

	addBook(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetBooksHandler(t *testing.T) {
	setupTest(t)
	addTestBook(t, "123456")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/books", nil)

	getBooks(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	require.Len(t, response, 1)
	assert.Equal(t, "123456", response[0]["serial_number"])
	assert.Equal(t, true, response[0]["available"])
}

func TestGetBookHandler(t *testing.T) {
	setupTest(t)
	addTestBook(t, "123456")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/books/123456", nil)
	c.Params = gin.Params{gin.Param{Key: "serialNumber", Value: "123456"}}

	getBook(c)

	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/books/999999", nil)
	c.Params = gin.Params{gin.Param{Key: "serialNumber", Value: "999999"}}

	getBook(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBorrowReturnFlowHandlers(t *testing.T) {
	setupTest(t)
	addTestBook(t, "123456")
	addTestUser(t, "987654")

	// Borrow succeeds once.
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/books/borrow/123456?library_card=987654", nil)
	c.Params = gin.Params{gin.Param{Key: "serialNumber", Value: "123456"}}

	borrowBook(c)

	assert.Equal(t, http.StatusOK, w.Code)

	// Second borrow before the return conflicts.
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/books/borrow/123456?library_card=987654", nil)
	c.Params = gin.Params{gin.Param{Key: "serialNumber", Value: "123456"}}

	borrowBook(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Listing shows the book as unavailable with the borrower attached.
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/books", nil)

	getBooks(c)

	var books []map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &books)
	require.Len(t, books, 1)
	assert.Equal(t, false, books[0]["available"])
	assert.Equal(t, "Jan Kowalski", books[0]["borrowed_by"])

	// Return brings it back.
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/books/return/123456", nil)
	c.Params = gin.Params{gin.Param{Key: "serialNumber", Value: "123456"}}

	returnBook(c)

	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/books", nil)

	getBooks(c)

	json.Unmarshal(w.Body.Bytes(), &books)
	require.Len(t, books, 1)
	assert.Equal(t, true, books[0]["available"])
}

func TestBorrowHandlerUserNotFound(t *testing.T) {
	setupTest(t)
	addTestBook(t, "123456")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/books/borrow/123456?library_card=111111", nil)
	c.Params = gin.Params{gin.Param{Key: "serialNumber", Value: "123456"}}

	borrowBook(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBorrowHandlerBadCard(t *testing.T) {
	setupTest(t)
	addTestBook(t, "123456")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/books/borrow/123456?library_card=12ab", nil)
	c.Params = gin.Params{gin.Param{Key: "serialNumber", Value: "123456"}}

	borrowBook(c)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestReturnHandlerNotBorrowed(t *testing.T) {
	setupTest(t)
	addTestBook(t, "123456")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/books/return/123456", nil)
	c.Params = gin.Params{gin.Param{Key: "serialNumber", Value: "123456"}}

	returnBook(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteBookHandler(t *testing.T) {
	setupTest(t)
	addTestBook(t, "123456")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("DELETE", "/api/v1/books/123456", nil)
	c.Params = gin.Params{gin.Param{Key: "serialNumber", Value: "123456"}}

	deleteBook(c)

	assert.Equal(t, http.StatusOK, w.Code)

	// Second delete reports not found.
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("DELETE", "/api/v1/books/123456", nil)
	c.Params = gin.Params{gin.Param{Key: "serialNumber", Value: "123456"}}

	deleteBook(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddUserHandler(t *testing.T) {
	setupTest(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/users?library_card=987654&firstname=Jan&lastname=Kowalski", nil)

	addUser(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "987654", response["library_card"])

	// Duplicate card conflicts.
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/users?library_card=987654&firstname=Anna&lastname=Nowak", nil)

	addUser(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Malformed card is rejected before it reaches the store.
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/users?library_card=12ab&firstname=Anna&lastname=Nowak", nil)

	addUser(c)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestGetUsersHandler(t *testing.T) {
	setupTest(t)
	addTestUser(t, "987654")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/users", nil)

	getUsers(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	require.Len(t, response, 1)
	assert.Equal(t, "987654", response[0]["library_card"])
}

func TestHealthCheck(t *testing.T) {
	setupTest(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/manage/health", nil)

	healthCheck(c)

	assert.Equal(t, http.StatusOK, w.Code)
}
