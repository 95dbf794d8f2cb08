package migrations

// Revision is one step of the schema history. DownRevision names the parent
// revision and is empty only for the root.
type Revision struct {
	ID           string
	DownRevision string
	Description  string
	Up           string
	Down         string
}

// Revisions returns the schema history oldest first
func Revisions() []Revision {
	return []Revision{
		initialSchema,
		postImages,
		productImageURL,
		expensePointsInteger,
		lookupTables,
		userPushToken,
	}
}

var initialSchema = Revision{
	ID:          "initial_schema",
	Description: "users, ledger, waste, feed, products and calendar",
	Up: `
CREATE TABLE users (
	id BIGSERIAL PRIMARY KEY,
	email VARCHAR(255) NOT NULL UNIQUE,
	hashed_password VARCHAR(255) NOT NULL,
	full_name VARCHAR(255) NOT NULL DEFAULT '',
	bio TEXT NOT NULL DEFAULT 'No bio :(',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	balance BIGINT NOT NULL DEFAULT 0,
	profile_image TEXT,
	receive_notifications BOOLEAN NOT NULL DEFAULT TRUE,
	receive_newsletter BOOLEAN NOT NULL DEFAULT TRUE,
	receive_product_updates BOOLEAN NOT NULL DEFAULT TRUE,
	receive_feedback_requests BOOLEAN NOT NULL DEFAULT TRUE,
	appear_in_search_results BOOLEAN NOT NULL DEFAULT TRUE,
	allow_data_collection BOOLEAN NOT NULL DEFAULT TRUE,
	opt_out_newspaper BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE user_photos (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	url TEXT NOT NULL
);

CREATE TABLE waste_types (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(64) NOT NULL UNIQUE,
	reward_points BIGINT NOT NULL CHECK (reward_points >= 0)
);

CREATE TABLE rewards (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	waste_type_id BIGINT NOT NULL REFERENCES waste_types(id),
	points BIGINT NOT NULL CHECK (points > 0),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX idx_rewards_user_created ON rewards (user_id, created_at);

CREATE TABLE expenses (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	description TEXT NOT NULL,
	points DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX idx_expenses_user_created ON expenses (user_id, created_at);

CREATE TABLE waste_collections (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	waste_type_id BIGINT NOT NULL REFERENCES waste_types(id),
	quantity DOUBLE PRECISION NOT NULL CHECK (quantity > 0),
	collection_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	location_latitude DOUBLE PRECISION NOT NULL,
	location_longitude DOUBLE PRECISION NOT NULL
);

CREATE TABLE recycling_centers (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	address VARCHAR(255) NOT NULL,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL
);

CREATE TABLE posts (
	id BIGSERIAL PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX idx_posts_created ON posts (created_at DESC);

CREATE TABLE products (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
	seller_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE calendar_events (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title VARCHAR(255) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	start_time TIMESTAMPTZ NOT NULL,
	end_time TIMESTAMPTZ NOT NULL
);
CREATE INDEX idx_calendar_events_user ON calendar_events (user_id, start_time);
`,
	Down: `
DROP TABLE IF EXISTS calendar_events;
DROP TABLE IF EXISTS products;
DROP TABLE IF EXISTS posts;
DROP TABLE IF EXISTS recycling_centers;
DROP TABLE IF EXISTS waste_collections;
DROP TABLE IF EXISTS expenses;
DROP TABLE IF EXISTS rewards;
DROP TABLE IF EXISTS waste_types;
DROP TABLE IF EXISTS user_photos;
DROP TABLE IF EXISTS users;
`,
}

var postImages = Revision{
	ID:           "post_images",
	DownRevision: "initial_schema",
	Description:  "images attached to posts",
	Up: `
CREATE TABLE post_images (
	id BIGSERIAL PRIMARY KEY,
	url TEXT NOT NULL,
	post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE
);
CREATE INDEX idx_post_images_post ON post_images (post_id);
`,
	Down: `DROP TABLE IF EXISTS post_images;`,
}

var productImageURL = Revision{
	ID:           "product_image_url",
	DownRevision: "post_images",
	Description:  "optional product image",
	Up:           `ALTER TABLE products ADD COLUMN image_url TEXT;`,
	Down:         `ALTER TABLE products DROP COLUMN IF EXISTS image_url;`,
}

var expensePointsInteger = Revision{
	ID:           "expense_points_integer",
	DownRevision: "product_image_url",
	Description:  "expense points become whole numbers",
	Up: `
ALTER TABLE expenses ALTER COLUMN points TYPE BIGINT USING ROUND(points)::BIGINT;
ALTER TABLE expenses ADD CONSTRAINT expenses_points_positive CHECK (points > 0);
`,
	Down: `
ALTER TABLE expenses DROP CONSTRAINT IF EXISTS expenses_points_positive;
ALTER TABLE expenses ALTER COLUMN points TYPE DOUBLE PRECISION;
`,
}

var lookupTables = Revision{
	ID:           "lookup_tables",
	DownRevision: "expense_points_integer",
	Description:  "post and product types, seeded reference data",
	Up: `
CREATE TABLE post_types (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(64) NOT NULL UNIQUE
);

CREATE TABLE product_types (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(64) NOT NULL UNIQUE
);

INSERT INTO waste_types (name, reward_points) VALUES
	('plastic', 10),
	('paper', 5),
	('glass', 15),
	('metal', 20),
	('electronic', 30)
ON CONFLICT (name) DO NOTHING;

INSERT INTO post_types (name) VALUES
	('article'), ('blog_post'), ('news'), ('review'), ('tutorial');

INSERT INTO product_types (name) VALUES
	('hot_deals'), ('trending'), ('normal'), ('clearance'), ('new_arrival');

INSERT INTO recycling_centers (name, address, latitude, longitude) VALUES
	('Green Recycling Center', '123 Green St', 40.7128, -74.0060),
	('Eco Waste Solutions', '456 Eco Ave', 40.7282, -73.7949),
	('Recycle Now', '789 Earth Blvd', 40.7489, -73.9680),
	('Clean Planet Recycling', '101 Clean Rd', 40.7231, -73.9442),
	('Sustainable Waste Management', '202 Sustain St', 40.7589, -73.9851);

ALTER TABLE posts ADD COLUMN post_type_id BIGINT REFERENCES post_types(id) ON DELETE SET NULL;

ALTER TABLE products ADD COLUMN product_type_id BIGINT REFERENCES product_types(id);
UPDATE products SET product_type_id = (SELECT id FROM product_types WHERE name = 'normal');
ALTER TABLE products ALTER COLUMN product_type_id SET NOT NULL;
`,
	Down: `
ALTER TABLE products DROP COLUMN IF EXISTS product_type_id;
ALTER TABLE posts DROP COLUMN IF EXISTS post_type_id;
DELETE FROM recycling_centers;
DELETE FROM waste_types WHERE name IN ('plastic', 'paper', 'glass', 'metal', 'electronic')
	AND NOT EXISTS (SELECT 1 FROM rewards WHERE rewards.waste_type_id = waste_types.id)
	AND NOT EXISTS (SELECT 1 FROM waste_collections WHERE waste_collections.waste_type_id = waste_types.id);
DROP TABLE IF EXISTS product_types;
DROP TABLE IF EXISTS post_types;
`,
}

var userPushToken = Revision{
	ID:           "user_push_token",
	DownRevision: "lookup_tables",
	Description:  "APNs device token per user",
	Up:           `ALTER TABLE users ADD COLUMN push_token TEXT;`,
	Down:         `ALTER TABLE users DROP COLUMN IF EXISTS push_token;`,
}
