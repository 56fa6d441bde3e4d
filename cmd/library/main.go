package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"libraryapi/pkg/catalog"
	"libraryapi/pkg/config"
	"libraryapi/pkg/database"
	"libraryapi/pkg/models"
)

var (
	db  *gorm.DB
	svc *catalog.Service
)

func main() {
	log.Println("Starting library service...")

	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Connecting to database: %s@%s:%s/%s", cfg.DB.User, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)

	db, err = database.Init(cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	svc = catalog.NewService(db)

	seedSampleData()

	server := gin.Default()

	if cfg.Mode == "dev" {
		server.Use(cors.New(cors.Config{
			AllowOrigins:  []string{"http://localhost:3000"},
			AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type"},
			ExposeHeaders: []string{"Content-Length"},
		}))
	}

	server.GET("/api/v1/books", getBooks)
	server.GET("/api/v1/books/:serialNumber", getBook)
	server.POST("/api/v1/books", addBook)
	server.DELETE("/api/v1/books/:serialNumber", deleteBook)
	server.POST("/api/v1/books/borrow/:serialNumber", borrowBook)
	server.POST("/api/v1/books/return/:serialNumber", returnBook)
	server.GET("/api/v1/users", getUsers)
	server.POST("/api/v1/users", addUser)
	server.GET("/manage/health", healthCheck)

	log.Printf("Library service starting on :%s", cfg.HTTPPort)
	if err := server.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func getBooks(c *gin.Context) {
	books, err := svc.ListBooks()
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func getBook(c *gin.Context) {
	book, err := svc.GetBook(c.Param("serialNumber"))
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func addBook(c *gin.Context) {
	book, err := svc.AddBook(
		c.Query("serial_number"),
		c.Query("title"),
		c.Query("author_firstname"),
		c.Query("author_lastname"),
	)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func deleteBook(c *gin.Context) {
	serialNumber := c.Param("serialNumber")
	if err := svc.DeleteBook(serialNumber); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book " + serialNumber + " deleted"})
}

func borrowBook(c *gin.Context) {
	serialNumber := c.Param("serialNumber")
	borrowing, err := svc.BorrowBook(serialNumber, c.Query("library_card"))
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Book " + serialNumber + " borrowed",
		"borrowingUid": borrowing.BorrowingUid,
	})
}

func returnBook(c *gin.Context) {
	serialNumber := c.Param("serialNumber")
	if err := svc.ReturnBook(serialNumber); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book " + serialNumber + " returned"})
}

func getUsers(c *gin.Context) {
	users, err := svc.ListUsers()
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func addUser(c *gin.Context) {
	user, err := svc.AddUser(
		c.Query("library_card"),
		c.Query("firstname"),
		c.Query("lastname"),
	)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func errorResponse(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

func statusForError(err error) int {
	var domainErr *models.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError
	}
	switch domainErr.Code {
	case models.ErrCodeInvalidIdentifier, models.ErrCodeInvalidArgument:
		return http.StatusUnsupportedMediaType
	case models.ErrCodeBookNotFound, models.ErrCodeUserNotFound,
		models.ErrCodeBookDeleted, models.ErrCodeNotBorrowed:
		return http.StatusNotFound
	case models.ErrCodeAlreadyBorrowed, models.ErrCodeDuplicateSerial,
		models.ErrCodeDuplicateLibraryCard:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func seedSampleData() {
	books := []struct {
		serialNumber string
		title        string
		authorFirst  string
		authorLast   string
	}{
		{"123456", "Zmija", "Andrzej", "Sapkowski"},
		{"234567", "Ostatnie zyczenie", "Andrzej", "Sapkowski"},
		{"345678", "Solaris", "Stanislaw", "Lem"},
	}
	for _, b := range books {
		if _, err := svc.AddBook(b.serialNumber, b.title, b.authorFirst, b.authorLast); err != nil {
			var domainErr *models.DomainError
			if errors.As(err, &domainErr) && domainErr.Code == models.ErrCodeDuplicateSerial {
				continue
			}
			log.Printf("Failed to seed book %s: %v", b.serialNumber, err)
		} else {
			log.Printf("Seeded book %s (%s)", b.title, b.serialNumber)
		}
	}

	users := []struct {
		libraryCard string
		firstName   string
		lastName    string
	}{
		{"987654", "Jan", "Kowalski"},
		{"876543", "Anna", "Nowak"},
	}
	for _, u := range users {
		if _, err := svc.AddUser(u.libraryCard, u.firstName, u.lastName); err != nil {
			var domainErr *models.DomainError
			if errors.As(err, &domainErr) && domainErr.Code == models.ErrCodeDuplicateLibraryCard {
				continue
			}
			log.Printf("Failed to seed user %s: %v", u.libraryCard, err)
		} else {
			log.Printf("Seeded user %s %s (%s)", u.firstName, u.lastName, u.libraryCard)
		}
	}
	log.Println("Sample data seeded")
}

func healthCheck(c *gin.Context) {
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database connection failed",
			"error":   err.Error(),
		})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database ping failed",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}
