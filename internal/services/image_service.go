package services

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"io"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paulokalleby/api-vendas/internal/apperr"
	"github.com/paulokalleby/api-vendas/internal/models"
	"github.com/paulokalleby/api-vendas/internal/storage"
)

const (
	imageMaxSize     = 1200
	imageJPEGQuality = 90
)

type ProductImageStore interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
	SetImage(ctx context.Context, tenantID, id uuid.UUID, image string) error
}

// ImageService processes and stores product images. Every upload is
// normalized to a JPEG bounded to 1200px on its longest side before it
// reaches the storage driver.
type ImageService struct {
	products ProductImageStore
	driver   storage.Driver
	logger   *zap.Logger
}

func NewImageService(products ProductImageStore, driver storage.Driver, logger *zap.Logger) *ImageService {
	return &ImageService{
		products: products,
		driver:   driver,
		logger:   logger,
	}
}

// Attach processes the uploaded file and binds it to the product. The
// storage path is derived from the product, so re-uploading replaces
// the previous image in place.
func (s *ImageService) Attach(ctx context.Context, tenantID, productID uuid.UUID, file io.Reader) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	src, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperr.Validation("invalid image file")
	}

	resized := imaging.Fit(src, imageMaxSize, imageMaxSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: imageJPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	path := fmt.Sprintf("products/%s/%s.jpg", tenantID, productID)
	if _, err := s.driver.Upload(ctx, &buf, path); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	if err := s.products.SetImage(ctx, tenantID, productID, path); err != nil {
		return nil, err
	}

	product.Image = &path
	s.Resolve(product)
	return product, nil
}

// Resolve fills ImageURL from the stored path for API responses.
func (s *ImageService) Resolve(product *models.Product) {
	if product.Image == nil {
		return
	}
	url := s.driver.PublicURL(*product.Image)
	product.ImageURL = &url
}

// ResolveAll fills ImageURL on every product in a list response.
func (s *ImageService) ResolveAll(products []models.Product) {
	for i := range products {
		s.Resolve(&products[i])
	}
}
