// Package models holds the GORM persistence models. Domain types carry no
// ORM tags; each model converts to and from its domain type with ToDomain and
// a ...FromDomain constructor.
package models
