package main

import (
	"context"
	"fmt"

	"github.com/trezcool/eduos/core/user"
)

func (cli *commandLine) addUser(nu user.NewUser) error {
	if err := cli.check(&nu); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Create(context.Background(), nu)
	if err != nil {
		return userError(err)
	}
	fmt.Printf("created %s %s (%s)\n", usr.Role, usr.Email, usr.ID)
	return nil
}
