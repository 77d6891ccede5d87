package server

import (
	"context"

	"urbantales/internal/apperror"
	"urbantales/internal/models"
	"urbantales/internal/services"

	"github.com/sirupsen/logrus"
)

// Demo seller credentials created by SeedDemoData.
const (
	DemoSellerEmail    = "demo.seller@urbantales.local"
	DemoSellerPassword = "demo-seller-pass"
)

// SeedDemoData creates a demo seller with a few products. It does nothing
// when the demo seller already exists.
func SeedDemoData(ctx context.Context, s *Server, log *logrus.Logger) error {
	_, seller, err := s.Auth.SignupSeller(ctx, services.SellerSignup{
		FullName: "Demo Seller",
		Email:    DemoSellerEmail,
		ShopName: "UrbanTales Demo Shop",
		Password: DemoSellerPassword,
	})
	if apperror.Is(err, apperror.KindConflict) {
		log.Info("demo data already present, skipping seed")
		return nil
	}
	if err != nil {
		return err
	}

	products := []models.Product{
		{Name: "Hand-block Printed Kurta", Category: "Clothing", Description: "Cotton kurta with indigo print", Price: 1299, Stock: 25},
		{Name: "Terracotta Vase", Category: "Home Decor", Description: "Hand-thrown vase, 30cm", Price: 849, Stock: 10},
		{Name: "Brass Diya Set", Category: "Home Decor", Description: "Set of four polished diyas", Price: 499, Stock: 40},
	}
	for i := range products {
		if err := s.Products.CreateProduct(ctx, seller.ID, &products[i]); err != nil {
			log.WithError(err).WithField("product", products[i].Name).Error("failed to seed product")
			continue
		}
		log.WithFields(logrus.Fields{"product": products[i].Name, "id": products[i].ID}).Info("seeded product")
	}
	return nil
}
