package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/eduos/core"
)

var (
	ErrInvalidCredentials = core.NewAuthenticationError("Invalid email or password.")
	ErrNotAParent         = core.NewValidationError(nil, core.FieldError{Field: "parent_id", Error: "parent_id must reference a parent account"})

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		// CreateUser saves usr, along with profile when usr is a student, atomically.
		CreateUser(ctx context.Context, usr User, profile *StudentProfile) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		QueryUsers(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error)
		CountUsers(ctx context.Context, role core.Role) (int, error)
		UpdateUser(ctx context.Context, usr User) (User, error)

		GetProfile(ctx context.Context, studentID string) (StudentProfile, error)
		QueryProfiles(ctx context.Context, filter ProfileFilter) ([]Child, error)
		UpdateProfile(ctx context.Context, profile StudentProfile) (StudentProfile, error)
	}

	Service interface {
		Create(ctx context.Context, nu NewUser) (User, error)
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error)
		Update(ctx context.Context, id string, uu UpdateUser) (User, error)
		SetPassword(ctx context.Context, email, pwd string) error

		GetProfile(ctx context.Context, studentID string) (StudentProfile, error)
		UpdateProfile(ctx context.Context, studentID string, up UpdateProfile) (StudentProfile, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) Service {
	return &service{repo: repo, mailSvc: mailSvc}
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		ID:        uuid.New().String(),
		Role:      nu.Role,
		Email:     nu.Email,
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		CreatedAt: nowFunc().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}

	var profile *StudentProfile
	if usr.Role == core.RoleStudent {
		profile = &StudentProfile{StudentID: usr.ID, EnrollmentYear: nowFunc().Year()}
	}
	usr, err := svc.repo.CreateUser(ctx, usr, profile)
	if err != nil {
		return User{}, err
	}

	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *service) sendWelcomeMail(usr User) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      "Your eduOS account",
		TemplateName: "welcome",
		TemplateData: usr,
	})
}

func (svc *service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return User{}, core.ErrNotFound
	}
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error) {
	ordering = core.CleanOrderings(ordering, "created_at", "email", "first_name", "last_name", "role")
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	return svc.repo.QueryUsers(ctx, filter, ordering...)
}

func (svc *service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if uu.FirstName != "" {
		usr.FirstName = uu.FirstName
	}
	if uu.LastName != "" {
		usr.LastName = uu.LastName
	}
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) SetPassword(ctx context.Context, email, pwd string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "setting password")
	}
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}

func (svc *service) GetProfile(ctx context.Context, studentID string) (StudentProfile, error) {
	if _, err := uuid.Parse(studentID); err != nil {
		return StudentProfile{}, core.ErrNotFound
	}
	return svc.repo.GetProfile(ctx, studentID)
}

func (svc *service) UpdateProfile(ctx context.Context, studentID string, up UpdateProfile) (StudentProfile, error) {
	profile, err := svc.GetProfile(ctx, studentID)
	if err != nil {
		return StudentProfile{}, err
	}

	if up.ParentID != nil {
		parent, err := svc.GetByID(ctx, *up.ParentID)
		if err != nil {
			if core.IsNotFound(err) {
				return StudentProfile{}, ErrNotAParent
			}
			return StudentProfile{}, errors.Wrap(err, "finding parent")
		}
		if parent.Role != core.RoleParent {
			return StudentProfile{}, ErrNotAParent
		}
	}

	profile.ParentID = up.ParentID
	profile.DateOfBirth = up.DateOfBirth
	if up.EnrollmentYear != 0 {
		profile.EnrollmentYear = up.EnrollmentYear
	}
	return svc.repo.UpdateProfile(ctx, profile)
}
