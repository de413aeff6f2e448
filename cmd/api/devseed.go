package main

import (
	"github.com/spec-kit/escalation-service/internal/auth"
	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/repository/memory"
)

var devUsers = []domain.User{
	{ID: "u-admin", Name: "Dev Admin", Email: "admin@school.test", Role: domain.RoleAdmin},
	{ID: "u-principal", Name: "Dev Principal", Email: "principal@school.test", Role: domain.RolePrincipal},
	{ID: "u-coordinator", Name: "Dev Coordinator", Email: "coordinator@school.test", Role: domain.RoleCoordinator},
	{ID: "u-teacher", Name: "Dev Teacher", Email: "teacher@school.test", Role: domain.RoleTeacher},
	{ID: "u-staff", Name: "Dev Staff", Email: "staff@school.test", Role: domain.RoleStaff},
}

var devStudents = []domain.Student{
	{ID: "s-1", Name: "Dev Student One", Class: "7A"},
	{ID: "s-2", Name: "Dev Student Two", Class: "8B"},
}

// seedDevDirectory fills the in-memory directory so dev mode can log in.
func seedDevDirectory(dir *memory.Directory, password string, cost int) error {
	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return err
	}
	for _, u := range devUsers {
		u.Active = true
		u.PasswordHash = hash
		dir.PutUser(u)
	}
	for _, s := range devStudents {
		dir.PutStudent(s)
	}
	return nil
}
