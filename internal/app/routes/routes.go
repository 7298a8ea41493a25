package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/chidi/libman/internal/app/controllers"
	"github.com/chidi/libman/internal/app/models"
	"github.com/chidi/libman/internal/app/models/dto"
	"github.com/chidi/libman/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	departmentController *controllers.DepartmentController,
	authorController *controllers.AuthorController,
	categoryController *controllers.CategoryController,
	bookController *controllers.BookController,
	studentController *controllers.StudentController,
	borrowController *controllers.BorrowController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
		auth.POST("/forgot-password", authController.ForgotPassword)
		auth.POST("/reset-password", authController.ResetPassword)
	}

	// Category statistics are public, mirroring the JSON feed the
	// dashboard charts read.
	v1.GET("/categories/stats", categoryController.GetCategoryStats)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authenticated.POST("/auth/logout", authController.Logout)

	// Catalogue reads are open to any authenticated user; mutations
	// need library staff.
	staffOnly := authMiddleware.RoleRequired(models.RoleAdmin, models.RoleLibrarian)

	departments := authenticated.Group("/departments")
	{
		departments.GET("", departmentController.GetAllDepartments)
		departments.GET("/:id", departmentController.GetDepartmentByID)

		departmentsProtected := departments.Group("")
		departmentsProtected.Use(staffOnly)
		{
			departmentsProtected.POST("", departmentController.CreateDepartment)
			departmentsProtected.PUT("/:id", departmentController.UpdateDepartment)
			departmentsProtected.DELETE("/:id", departmentController.DeleteDepartment)
		}
	}

	authors := authenticated.Group("/authors")
	{
		authors.GET("", authorController.GetAllAuthors)
		authors.GET("/:id", authorController.GetAuthorByID)

		authorsProtected := authors.Group("")
		authorsProtected.Use(staffOnly)
		{
			authorsProtected.POST("", authorController.CreateAuthor)
			authorsProtected.PUT("/:id", authorController.UpdateAuthor)
			authorsProtected.DELETE("/:id", authorController.DeleteAuthor)
		}
	}

	categories := authenticated.Group("/categories")
	{
		categories.GET("", categoryController.GetAllCategories)
		categories.GET("/:id", categoryController.GetCategoryByID)

		categoriesProtected := categories.Group("")
		categoriesProtected.Use(staffOnly)
		{
			categoriesProtected.POST("", categoryController.CreateCategory)
			categoriesProtected.PUT("/:id", categoryController.UpdateCategory)
			categoriesProtected.DELETE("/:id", categoryController.DeleteCategory)
		}
	}

	books := authenticated.Group("/books")
	{
		books.GET("", bookController.GetAllBooks)
		books.GET("/:id", bookController.GetBookByID)

		booksProtected := books.Group("")
		booksProtected.Use(staffOnly)
		{
			booksProtected.POST("", bookController.CreateBook)
			booksProtected.PUT("/:id", bookController.UpdateBook)
			booksProtected.DELETE("/:id", bookController.DeleteBook)
		}
	}

	students := authenticated.Group("/students")
	students.Use(staffOnly)
	{
		students.GET("", studentController.GetAllStudents)
		students.GET("/:id", studentController.GetStudentByID)
		students.POST("", studentController.CreateStudent)
		students.PUT("/:id", studentController.UpdateStudent)
		students.DELETE("/:id", studentController.DeleteStudent)
	}

	borrow := authenticated.Group("/borrow")
	borrow.Use(staffOnly)
	{
		borrow.POST("", borrowController.StageBorrow)
		borrow.GET("/:token", borrowController.GetStagedSelection)
		borrow.POST("/confirm", borrowController.ConfirmBorrow)
		borrow.POST("/qr", borrowController.BorrowByCode)
	}

	loans := authenticated.Group("/loans")
	loans.Use(staffOnly)
	{
		loans.POST("/:id/return", borrowController.ReturnLoan)
		loans.POST("/:id/unreturn", borrowController.UnreturnLoan)
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})
}
