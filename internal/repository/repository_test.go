package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bcpschool/portal-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Assignment{}, &models.Submission{}, &models.Announcement{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		PasswordHash: "x",
		Role:         role,
		Email:        username + "@school.test",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestUserRepositoryDuplicateTranslation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	first := models.User{Username: "ana", PasswordHash: "x", Role: models.RoleStudent, Email: "ana@school.test"}
	require.NoError(t, repo.Create(context.Background(), &first))

	dupe := models.User{Username: "ana", PasswordHash: "x", Role: models.RoleStudent, Email: "other@school.test"}
	err := repo.Create(context.Background(), &dupe)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestUserRepositoryExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	user := seedUser(t, db, "bob", models.RoleTeacher)

	exists, err := repo.Exists(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, repo.Delete(context.Background(), user.ID))

	exists, err = repo.Exists(context.Background(), user.ID)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestAssignmentRepositoryOwnedMutations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)

	owner := seedUser(t, db, "owner", models.RoleTeacher)
	other := seedUser(t, db, "other", models.RoleTeacher)

	assignment := models.Assignment{
		Title:     "Fractions",
		Subject:   "Math",
		DueDate:   time.Now().Add(48 * time.Hour),
		CreatedBy: owner.ID,
	}
	require.NoError(t, repo.Create(context.Background(), &assignment))

	assignment.Title = "Fractions II"
	err := repo.UpdateOwned(context.Background(), &assignment, other.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.UpdateOwned(context.Background(), &assignment, owner.ID))

	fetched, err := repo.GetByID(context.Background(), assignment.ID)
	require.NoError(t, err)
	require.Equal(t, "Fractions II", fetched.Title)

	require.ErrorIs(t, repo.DeleteOwned(context.Background(), assignment.ID, other.ID), gorm.ErrRecordNotFound)
	require.NoError(t, repo.DeleteOwned(context.Background(), assignment.ID, owner.ID))

	_, err = repo.GetByID(context.Background(), assignment.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAssignmentRepositoryListByOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)

	owner := seedUser(t, db, "teach1", models.RoleTeacher)
	other := seedUser(t, db, "teach2", models.RoleTeacher)

	for i, ownerID := range []uint{owner.ID, owner.ID, other.ID} {
		require.NoError(t, repo.Create(context.Background(), &models.Assignment{
			Title:     "A",
			Subject:   "S",
			DueDate:   time.Now().Add(time.Duration(i) * time.Hour),
			CreatedBy: ownerID,
		}))
	}

	own, err := repo.ListByOwner(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, own, 2)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestSubmissionRepositoryOwnedMutations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	student := seedUser(t, db, "nina", models.RoleStudent)
	other := seedUser(t, db, "omar", models.RoleStudent)

	submission := models.Submission{AssignmentID: 1, StudentID: student.ID, FilePath: "/submissions/a.pdf"}
	require.NoError(t, repo.Create(context.Background(), &submission))

	err := repo.UpdateOwned(context.Background(), submission.ID, other.ID, "/submissions/b.pdf")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.UpdateOwned(context.Background(), submission.ID, student.ID, "/submissions/b.pdf"))

	fetched, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, "/submissions/b.pdf", fetched.FilePath)

	require.ErrorIs(t, repo.DeleteOwned(context.Background(), submission.ID, other.ID), gorm.ErrRecordNotFound)
	require.NoError(t, repo.DeleteOwned(context.Background(), submission.ID, student.ID))
}

func TestSubmissionRepositoryGrade(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	student := seedUser(t, db, "kid", models.RoleStudent)

	submission := models.Submission{AssignmentID: 1, StudentID: student.ID}
	require.NoError(t, repo.Create(context.Background(), &submission))

	require.NoError(t, repo.Grade(context.Background(), submission.ID, 92, "excellent"))

	graded, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.NotNil(t, graded.Grade)
	require.Equal(t, 92, *graded.Grade)
	require.Equal(t, "excellent", graded.Feedback)

	require.ErrorIs(t, repo.Grade(context.Background(), 999, 50, ""), gorm.ErrRecordNotFound)
}

func TestAnnouncementRepositoryOwnedMutations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnnouncementRepository(db)

	author := seedUser(t, db, "principal", models.RoleAdmin)
	other := seedUser(t, db, "teacher", models.RoleTeacher)

	announcement := models.Announcement{Title: "Exam week", Content: "Starts Monday.", CreatedBy: author.ID}
	require.NoError(t, repo.Create(context.Background(), &announcement))

	announcement.Content = "Starts Tuesday."
	require.ErrorIs(t, repo.UpdateOwned(context.Background(), &announcement, other.ID), gorm.ErrRecordNotFound)
	require.NoError(t, repo.UpdateOwned(context.Background(), &announcement, author.ID))

	require.ErrorIs(t, repo.DeleteOwned(context.Background(), announcement.ID, other.ID), gorm.ErrRecordNotFound)
	require.NoError(t, repo.DeleteOwned(context.Background(), announcement.ID, author.ID))
}
