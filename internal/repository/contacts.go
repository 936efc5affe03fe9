package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vlasenko/contacts_api/internal/models"
)

type ContactRepo struct {
	DB *gorm.DB
}

func (r *ContactRepo) GetAll(ctx context.Context, userID uint) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return contacts, nil
}

func (r *ContactRepo) GetByID(ctx context.Context, userID, contactID uint) (*models.Contact, error) {
	var contact models.Contact
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, contactID).
		First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &contact, nil
}

func (r *ContactRepo) GetByName(ctx context.Context, userID uint, name string) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND lower(name) = lower(?)", userID, name).
		Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return contacts, nil
}

func (r *ContactRepo) GetByLastname(ctx context.Context, userID uint, lastname string) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND lower(lastname) = lower(?)", userID, lastname).
		Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return contacts, nil
}

func (r *ContactRepo) GetByEmail(ctx context.Context, userID uint, email string) (*models.Contact, error) {
	var contact models.Contact
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND lower(email) = lower(?)", userID, email).
		First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &contact, nil
}

func (r *ContactRepo) Create(ctx context.Context, contact *models.Contact) error {
	if err := r.DB.WithContext(ctx).Create(contact).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *ContactRepo) Update(ctx context.Context, userID uint, contact *models.Contact) (*models.Contact, error) {
	existing, err := r.GetByID(ctx, userID, contact.ID)
	if err != nil {
		return nil, err
	}

	existing.Name = contact.Name
	existing.Lastname = contact.Lastname
	existing.Email = contact.Email
	existing.Phone = contact.Phone
	existing.Birthday = contact.Birthday
	existing.Note = contact.Note

	if err := r.DB.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return existing, nil
}

func (r *ContactRepo) Delete(ctx context.Context, userID, contactID uint) (*models.Contact, error) {
	contact, err := r.GetByID(ctx, userID, contactID)
	if err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Delete(contact).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return contact, nil
}
