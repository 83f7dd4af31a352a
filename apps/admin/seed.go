package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/school"
	"github.com/trezcool/eduos/core/user"
)

const seedPassword = "eduos-demo"

var errAlreadySeeded = errors.New("database already holds an admin; refusing to seed")

// seed loads a small demo school: one account per role, two subjects, two classes and their enrollments.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	admins, err := cli.usrSvc.Query(ctx, user.QueryFilter{Role: core.RoleAdmin})
	if err != nil {
		return err
	}
	if len(admins) > 0 {
		return errAlreadySeeded
	}

	newUser := func(role core.Role, first, last, email string) (user.User, error) {
		nu := user.NewUser{Email: email, Password: seedPassword, FirstName: first, LastName: last, Role: role}
		if err := cli.check(&nu); err != nil {
			return user.User{}, err
		}
		usr, err := cli.usrSvc.Create(ctx, nu)
		return usr, userError(err)
	}

	if _, err = newUser(core.RoleAdmin, "Ada", "Admin", "admin@eduos.local"); err != nil {
		return err
	}
	teacher, err := newUser(core.RoleTeacher, "Tom", "Teach", "teacher@eduos.local")
	if err != nil {
		return err
	}
	parent, err := newUser(core.RoleParent, "Pam", "Parent", "parent@eduos.local")
	if err != nil {
		return err
	}
	students := make([]user.User, 0, 2)
	for _, name := range [][2]string{{"Amy", "Alpha"}, {"Bob", "Beta"}} {
		std, err := newUser(core.RoleStudent, name[0], name[1], fmt.Sprintf("%s@eduos.local", name[0]))
		if err != nil {
			return err
		}
		students = append(students, std)
	}

	parentID := parent.ID
	up := user.UpdateProfile{ParentID: &parentID}
	if err = cli.check(&up); err != nil {
		return err
	}
	if _, err = cli.usrSvc.UpdateProfile(ctx, students[0].ID, up); err != nil {
		return err
	}

	year := time.Now().Year()
	for _, subj := range []school.NewSubject{
		{Code: "MATH101", Name: "Mathematics", Credits: 4},
		{Code: "HIST101", Name: "History", Credits: 3},
	} {
		subj := subj
		if err = cli.check(&subj); err != nil {
			return err
		}
		created, err := cli.schoolSvc.CreateSubject(ctx, subj)
		if err != nil {
			return err
		}
		nc := school.NewClass{SubjectID: created.ID, TeacherID: teacher.ID, Semester: "Fall", AcademicYear: year}
		if err = cli.check(&nc); err != nil {
			return err
		}
		cls, err := cli.schoolSvc.CreateClass(ctx, nc)
		if err != nil {
			return err
		}
		for _, std := range students {
			ne := school.NewEnrollment{StudentID: std.ID, ClassID: cls.ID}
			if err = cli.check(&ne); err != nil {
				return err
			}
			if _, err = cli.schoolSvc.CreateEnrollment(ctx, ne); err != nil {
				return err
			}
		}
	}

	fmt.Printf("seeded %d users; every password is %q\n", 3+len(students), seedPassword)
	return nil
}
