package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/HappyHacker143/taskflow/internal/models"
)

type DepartmentService struct {
	db *gorm.DB
}

func NewDepartmentService(db *gorm.DB) *DepartmentService {
	return &DepartmentService{db: db}
}

type departmentRow struct {
	ID            uint
	Name          string
	Description   string
	CreatedAt     time.Time
	EmployeeCount int64
}

func (s *DepartmentService) ListDepartments(ctx context.Context) ([]DepartmentDTO, error) {
	var rows []departmentRow
	if err := s.db.WithContext(ctx).
		Model(&models.Department{}).
		Select("departments.id, departments.name, departments.description, departments.created_at, COUNT(user_profiles.id) AS employee_count").
		Joins("LEFT JOIN user_profiles ON user_profiles.department_id = departments.id").
		Group("departments.id, departments.name, departments.description, departments.created_at").
		Order("departments.name ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}

	result := make([]DepartmentDTO, 0, len(rows))
	for _, row := range rows {
		result = append(result, DepartmentDTO{
			ID:            row.ID,
			Name:          row.Name,
			Description:   row.Description,
			EmployeeCount: row.EmployeeCount,
			CreatedAt:     row.CreatedAt,
		})
	}
	return result, nil
}

func (s *DepartmentService) CreateDepartment(ctx context.Context, input CreateDepartmentInput) (DepartmentDTO, error) {
	errs := fieldErrors{}

	name, msg := normalizeRequiredString(input.Name, "name", 200)
	if msg != "" {
		errs.add("name", msg)
	}
	description, msg := normalizeOptionalString(input.Description, "description", 10000)
	if msg != "" {
		errs.add("description", msg)
	}
	if err := errs.err(); err != nil {
		return DepartmentDTO{}, err
	}

	department := models.Department{
		Name:        name,
		Description: description,
	}
	if err := s.db.WithContext(ctx).Create(&department).Error; err != nil {
		return DepartmentDTO{}, mapDatabaseError(err)
	}

	return DepartmentDTO{
		ID:          department.ID,
		Name:        department.Name,
		Description: department.Description,
		CreatedAt:   department.CreatedAt,
	}, nil
}

func loadDepartmentRefs(ctx context.Context, db *gorm.DB) ([]DepartmentRef, error) {
	var departments []models.Department
	if err := db.WithContext(ctx).Order("name ASC").Find(&departments).Error; err != nil {
		return nil, fmt.Errorf("load departments: %w", err)
	}

	refs := make([]DepartmentRef, 0, len(departments))
	for _, department := range departments {
		refs = append(refs, DepartmentRef{ID: department.ID, Name: department.Name})
	}
	return refs, nil
}

func ensureDepartmentExists(ctx context.Context, db *gorm.DB, departmentID uint) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Department{}).Where("id = ?", departmentID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check department existence: %w", err)
	}
	return count > 0, nil
}
