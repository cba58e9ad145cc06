package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"rowlly_listings/catalog"
	"rowlly_listings/models"
)

// PostgresStore reads the brokerage catalog from the listings database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS agents (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			title TEXT,
			image TEXT,
			phone TEXT,
			email TEXT,
			bio TEXT,
			experience INTEGER DEFAULT 0,
			specialties TEXT[],
			languages TEXT[],
			sales INTEGER DEFAULT 0,
			rating DOUBLE PRECISION DEFAULT 0,
			reviews INTEGER DEFAULT 0,
			social JSONB,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS properties (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			address TEXT,
			city TEXT,
			state TEXT,
			zip TEXT,
			property_type TEXT NOT NULL,
			status TEXT NOT NULL,
			price INTEGER NOT NULL,
			bedrooms INTEGER NOT NULL,
			bathrooms DOUBLE PRECISION NOT NULL,
			sqft INTEGER NOT NULL,
			lot_size TEXT,
			year_built INTEGER,
			images TEXT[] NOT NULL,
			features TEXT[],
			agent_id TEXT NOT NULL REFERENCES agents(id),
			neighborhood JSONB,
			financial JSONB,
			featured BOOLEAN DEFAULT FALSE,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		);`)
	return err
}

// =============================================================================
// Catalog
// =============================================================================

// Load implements catalog.Source.
func (s *PostgresStore) Load(ctx context.Context) (*catalog.Catalog, error) {
	return s.LoadCatalog(ctx)
}

// LoadCatalog reads every agent and listing and builds a validated snapshot.
// Listings keep the order of their position column.
func (s *PostgresStore) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	agents, err := s.getAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load agents: %w", err)
	}
	properties, err := s.getProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("load properties: %w", err)
	}
	return catalog.New(properties, agents)
}

func (s *PostgresStore) getAgents(ctx context.Context) ([]models.Agent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, COALESCE(title, ''), COALESCE(image, ''), COALESCE(phone, ''),
			COALESCE(email, ''), COALESCE(bio, ''), experience, COALESCE(specialties, '{}'),
			COALESCE(languages, '{}'), sales, rating, reviews, COALESCE(social, '{}'::jsonb)
		FROM agents ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []models.Agent
	for rows.Next() {
		var a models.Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Title, &a.Image, &a.Phone, &a.Email, &a.Bio,
			&a.Experience, &a.Specialties, &a.Languages, &a.Sales, &a.Rating, &a.Reviews, &a.Social); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

func (s *PostgresStore) getProperties(ctx context.Context) ([]models.Property, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, COALESCE(description, ''), COALESCE(address, ''), COALESCE(city, ''),
			COALESCE(state, ''), COALESCE(zip, ''), property_type, status, price, bedrooms,
			bathrooms, sqft, COALESCE(lot_size, ''), COALESCE(year_built, 0), images,
			COALESCE(features, '{}'), agent_id, COALESCE(neighborhood, '{}'::jsonb),
			COALESCE(financial, '{}'::jsonb), featured
		FROM properties ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		var p models.Property
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Address, &p.City, &p.State, &p.Zip,
			&p.PropertyType, &p.Status, &p.Price, &p.Bedrooms, &p.Bathrooms, &p.SqFt, &p.LotSize,
			&p.YearBuilt, &p.Images, &p.Features, &p.AgentID, &p.Neighborhood, &p.Financial,
			&p.Featured); err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

// ImportCatalog upserts a snapshot into the database in one transaction.
func (s *PostgresStore) ImportCatalog(ctx context.Context, c *catalog.Catalog) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, a := range c.Agents() {
		batch.Queue(`
			INSERT INTO agents (id, name, title, image, phone, email, bio, experience, specialties,
				languages, sales, rating, reviews, social, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, title = EXCLUDED.title, image = EXCLUDED.image,
				phone = EXCLUDED.phone, email = EXCLUDED.email, bio = EXCLUDED.bio,
				experience = EXCLUDED.experience, specialties = EXCLUDED.specialties,
				languages = EXCLUDED.languages, sales = EXCLUDED.sales, rating = EXCLUDED.rating,
				reviews = EXCLUDED.reviews, social = EXCLUDED.social, updated_at = NOW()`,
			a.ID, a.Name, a.Title, a.Image, a.Phone, a.Email, a.Bio, a.Experience, a.Specialties,
			a.Languages, a.Sales, a.Rating, a.Reviews, a.Social)
	}
	for i, p := range c.Properties() {
		batch.Queue(`
			INSERT INTO properties (id, position, title, description, address, city, state, zip,
				property_type, status, price, bedrooms, bathrooms, sqft, lot_size, year_built,
				images, features, agent_id, neighborhood, financial, featured, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NULLIF($16, 0),
				$17, $18, $19, $20, $21, $22, NOW())
			ON CONFLICT (id) DO UPDATE SET
				position = EXCLUDED.position, title = EXCLUDED.title,
				description = EXCLUDED.description, address = EXCLUDED.address,
				city = EXCLUDED.city, state = EXCLUDED.state, zip = EXCLUDED.zip,
				property_type = EXCLUDED.property_type, status = EXCLUDED.status,
				price = EXCLUDED.price, bedrooms = EXCLUDED.bedrooms,
				bathrooms = EXCLUDED.bathrooms, sqft = EXCLUDED.sqft,
				lot_size = EXCLUDED.lot_size, year_built = EXCLUDED.year_built,
				images = EXCLUDED.images, features = EXCLUDED.features,
				agent_id = EXCLUDED.agent_id, neighborhood = EXCLUDED.neighborhood,
				financial = EXCLUDED.financial, featured = EXCLUDED.featured, updated_at = NOW()`,
			p.ID, i, p.Title, p.Description, p.Address, p.City, p.State, p.Zip,
			string(p.PropertyType), string(p.Status), p.Price, p.Bedrooms, p.Bathrooms, p.SqFt,
			p.LotSize, p.YearBuilt, p.Images, p.Features, p.AgentID, p.Neighborhood, p.Financial,
			p.Featured)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert catalog: %w", err)
	}
	return tx.Commit(ctx)
}
