package services

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/CharlesX20/chimestradingstore/models"
	"github.com/CharlesX20/chimestradingstore/repository"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	ProductImageFolder  = "products"
	recommendationCount = 4
)

var rawBase64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/\r\n]+={0,2}$`)

type ProductService struct {
	repo     repository.ProductRepository
	images   ImageStore
	validate *validator.Validate
	logger   *zap.Logger
}

func NewProductService(repo repository.ProductRepository, images ImageStore, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{repo: repo, images: images, validate: newValidator(), logger: logger}
}

func (s *ProductService) GetAll(ctx context.Context) ([]models.Product, *ServiceError) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("failed to list products", zap.Error(err))
		return nil, internalError("Failed to fetch products")
	}
	return products, nil
}

func (s *ProductService) GetFeatured(ctx context.Context) ([]models.Product, *ServiceError) {
	products, err := s.repo.FindFeatured(ctx)
	if err != nil {
		s.logger.Error("failed to list featured products", zap.Error(err))
		return nil, internalError("Failed to fetch featured products")
	}
	return products, nil
}

func (s *ProductService) GetByCategory(ctx context.Context, category string) ([]models.Product, *ServiceError) {
	products, err := s.repo.FindByCategory(ctx, category)
	if err != nil {
		s.logger.Error("failed to list products by category", zap.String("category", category), zap.Error(err))
		return nil, internalError("Failed to fetch products")
	}
	return products, nil
}

func (s *ProductService) GetRecommendations(ctx context.Context) ([]models.Product, *ServiceError) {
	products, err := s.repo.Sample(ctx, recommendationCount)
	if err != nil {
		s.logger.Error("failed to sample products", zap.Error(err))
		return nil, internalError("Failed to fetch recommendations")
	}
	return products, nil
}

// Create validates req, hosts the optional image and stores the product.
func (s *ProductService) Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError) {
	if err := s.validate.Struct(req); err != nil {
		v := firstViolation(err)
		return nil, badRequest(v.Field + " " + v.Message)
	}

	imageURL := req.Image
	if isUploadable(req.Image) {
		url, err := s.images.Upload(ctx, normalizeImagePayload(req.Image), ProductImageFolder)
		if err != nil {
			s.logger.Error("product image upload failed", zap.Error(err))
			return nil, &ServiceError{StatusCode: http.StatusBadGateway, Message: "Image upload failed"}
		}
		imageURL = url
	}

	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Image:       imageURL,
		Category:    strings.TrimSpace(req.Category),
	}
	now := timeNow().UTC()
	product.CreatedAt, product.UpdatedAt = now, now

	id, err := s.repo.Create(ctx, product)
	if err != nil {
		s.logger.Error("failed to create product", zap.Error(err))
		return nil, internalError("Failed to create product")
	}
	product.ID = id
	return product, nil
}

// Update applies the non-nil fields of req. Image handling: a data URL or raw
// base64 payload is uploaded and replaces the old hosted image, any other new
// string is taken as a URL, and an absent or unchanged value keeps the image.
func (s *ProductService) Update(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, *ServiceError) {
	oid, svcErr := parseProductID(id)
	if svcErr != nil {
		return nil, svcErr
	}
	if err := s.validate.Struct(req); err != nil {
		v := firstViolation(err)
		return nil, badRequest(v.Field + " " + v.Message)
	}

	current, svcErr := s.find(ctx, oid)
	if svcErr != nil {
		return nil, svcErr
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if req.IsFeatured != nil {
		updates["isFeatured"] = *req.IsFeatured
	}

	var replacedImage string
	if req.Image != nil && *req.Image != "" && *req.Image != current.Image {
		incoming := *req.Image
		if isUploadable(incoming) {
			url, err := s.images.Upload(ctx, normalizeImagePayload(incoming), ProductImageFolder)
			if err != nil {
				s.logger.Error("product image upload failed", zap.String("product_id", id), zap.Error(err))
				return nil, &ServiceError{StatusCode: http.StatusBadGateway, Message: "Image upload failed"}
			}
			updates["image"] = url
			replacedImage = current.Image
		} else {
			updates["image"] = incoming
		}
	}

	if len(updates) == 0 {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, oid, updates)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Product not found")
	}
	if err != nil {
		s.logger.Error("failed to update product", zap.String("product_id", id), zap.Error(err))
		return nil, internalError("Failed to update product")
	}

	if replacedImage != "" {
		s.deleteImage(ctx, replacedImage)
	}
	return updated, nil
}

// ToggleFeatured flips the featured flag.
func (s *ProductService) ToggleFeatured(ctx context.Context, id string) (*models.Product, *ServiceError) {
	oid, svcErr := parseProductID(id)
	if svcErr != nil {
		return nil, svcErr
	}
	current, svcErr := s.find(ctx, oid)
	if svcErr != nil {
		return nil, svcErr
	}

	updated, err := s.repo.Update(ctx, oid, map[string]interface{}{"isFeatured": !current.IsFeatured})
	if err != nil {
		s.logger.Error("failed to toggle featured", zap.String("product_id", id), zap.Error(err))
		return nil, internalError("Failed to update product")
	}
	return updated, nil
}

// Delete removes the product; its hosted image is removed best-effort.
func (s *ProductService) Delete(ctx context.Context, id string) *ServiceError {
	oid, svcErr := parseProductID(id)
	if svcErr != nil {
		return svcErr
	}
	current, svcErr := s.find(ctx, oid)
	if svcErr != nil {
		return svcErr
	}

	if current.Image != "" {
		s.deleteImage(ctx, current.Image)
	}

	if err := s.repo.Delete(ctx, oid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Product not found")
		}
		s.logger.Error("failed to delete product", zap.String("product_id", id), zap.Error(err))
		return internalError("Failed to delete product")
	}
	return nil
}

func (s *ProductService) find(ctx context.Context, id primitive.ObjectID) (*models.Product, *ServiceError) {
	product, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Product not found")
	}
	if err != nil {
		s.logger.Error("failed to load product", zap.String("product_id", id.Hex()), zap.Error(err))
		return nil, internalError("Failed to load product")
	}
	return product, nil
}

func (s *ProductService) deleteImage(ctx context.Context, url string) {
	if err := s.images.Delete(ctx, url); err != nil {
		s.logger.Warn("failed to delete product image", zap.String("image", url), zap.Error(err))
	}
}

func parseProductID(id string) (primitive.ObjectID, *ServiceError) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, badRequest("Invalid product ID")
	}
	return oid, nil
}

// isUploadable reports whether an image value is inline data rather than a URL.
func isUploadable(image string) bool {
	if strings.HasPrefix(image, "data:") {
		return true
	}
	return len(image) > 100 && rawBase64Pattern.MatchString(image)
}

// normalizeImagePayload prefixes bare base64 so it becomes a data URL.
func normalizeImagePayload(image string) string {
	if strings.HasPrefix(image, "data:") {
		return image
	}
	return "data:image/jpeg;base64," + strings.Join(strings.Fields(image), "")
}
