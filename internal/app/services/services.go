package services

// Services defined in this package:
// - AuthService: Login, token refresh and the password-reset flow
// - DepartmentService: Department CRUD
// - AuthorService: Author CRUD
// - CategoryService: Category CRUD and statistics
// - BookService: Book CRUD plus identifier image lifecycle
// - StudentService: Student CRUD plus identifier image lifecycle
// - BorrowService: The staged borrowing workflow and loan returns
