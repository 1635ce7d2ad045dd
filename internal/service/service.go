package service

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/HappyHacker143/taskflow/internal/markup"
	"github.com/HappyHacker143/taskflow/internal/stats"
)

type Options struct {
	// Location decides which calendar day "today" is for overdue checks.
	Location     *time.Location
	SessionTTL   time.Duration
	PasswordCost int
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = 14 * 24 * time.Hour
	}
	if o.PasswordCost == 0 {
		o.PasswordCost = bcrypt.DefaultCost
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) today() time.Time {
	return stats.Today(o.Now(), o.Location)
}

// Service bundles every use case behind the HTTP API.
type Service struct {
	*AuthService
	*UserService
	*DepartmentService
	*ProjectService
	*TaskService
}

var _ Manager = (*Service)(nil)

func New(db *gorm.DB, options Options) *Service {
	options = options.withDefaults()
	renderer := markup.NewRenderer()

	return &Service{
		AuthService:       NewAuthService(db, options),
		UserService:       NewUserService(db, options),
		DepartmentService: NewDepartmentService(db),
		ProjectService:    NewProjectService(db, options),
		TaskService:       NewTaskService(db, options, renderer),
	}
}
