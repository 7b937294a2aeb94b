package sqlite

import (
	"context"

	"nfcExperience/domain"
)

// SeedSample loads the product and campaigns behind the landing page sample
// URLs so a fresh local database can serve them.
func (s *Store) SeedSample(ctx context.Context) error {
	modelURL := "/models/iqos-iluma.glb"
	if err := s.UpsertProduct(ctx, domain.Product{
		Prd:            1001,
		Brand:          "IQOS",
		Name:           "IQOS ILUMA",
		Type:           "d",
		ModelURL:       &modelURL,
		ModelScale:     10,
		ModelRotationY: 0.5,
	}); err != nil {
		return err
	}

	campaigns := []domain.Campaign{
		{Cc: 101, Name: "Launch", ThemePrimary: "#0A2540", ThemeSecondary: "#00B4D8", ThemeAccent: "#90E0EF"},
		{Cc: 102, Name: "Lancement", ThemePrimary: "#3D0C11", ThemeSecondary: "#D80032", ThemeAccent: "#F78CA2"},
	}
	for _, c := range campaigns {
		if err := s.UpsertCampaign(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
