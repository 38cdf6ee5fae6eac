package driver

// Automation columns returned by every catalog read, in decode order.
const automationColumns = `
		a.id AS id,
		a.title AS title,
		a.description AS description,
		a.category AS category,
		a.difficulty AS difficulty,
		a.tags AS tags,
		a.rating AS rating,
		coalesce(a.downloads, 0) AS downloads,
		a.workflow_json AS workflow_json,
		a.file_url AS file_url,
		a.created_at AS created_at`

const (
	SaveAutomationQuery = `
		MERGE (a:Automation {id: $id})
		SET a.title = $title,
			a.description = $description,
			a.category = $category,
			a.difficulty = $difficulty,
			a.tags = $tags,
			a.rating = $rating,
			a.downloads = $downloads,
			a.workflow_json = $workflow_json,
			a.file_url = $file_url,
			a.created_at = $created_at
		RETURN a.id AS id
	`

	// ListAutomationsQuery applies the optional title substring and exact
	// category filters. Empty parameters disable a filter.
	ListAutomationsQuery = `
		MATCH (a:Automation)
		WHERE ($search = '' OR toLower(a.title) CONTAINS toLower($search))
			AND ($category = '' OR a.category = $category)
		RETURN` + automationColumns + `
		ORDER BY a.created_at DESC
	`

	GetAutomationQuery = `
		MATCH (a:Automation {id: $id})
		RETURN` + automationColumns

	IncrementDownloadsQuery = `
		MATCH (a:Automation {id: $id})
		SET a.downloads = coalesce(a.downloads, 0) + 1
		RETURN a.downloads AS downloads
	`

	CategoriesQuery = `
		MATCH (a:Automation)
		WHERE a.category IS NOT NULL AND a.category <> ''
		RETURN DISTINCT a.category AS category
		ORDER BY category
	`

	// InsertDownloadQuery creates the DOWNLOADED edge once per user and
	// automation. created is false when the edge already existed.
	InsertDownloadQuery = `
		MATCH (a:Automation {id: $automation_id})
		MERGE (u:User {id: $user_id})
		MERGE (u)-[d:DOWNLOADED]->(a)
		ON CREATE SET d.id = $id, d.download_date = $download_date
		RETURN d.id = $id AS created
	`

	ListDownloadsQuery = `
		MATCH (u:User {id: $user_id})-[d:DOWNLOADED]->(a:Automation)
		RETURN d.id AS download_id,
			d.download_date AS download_date,` + automationColumns + `
		ORDER BY d.download_date DESC
	`

	GetProfileQuery = `
		MATCH (p:Profile {id: $id})
		RETURN p.id AS id, p.name AS name, p.subscription_status AS subscription_status, p.updated_at AS updated_at
	`

	UpsertProfileNameQuery = `
		MERGE (p:Profile {id: $id})
		ON CREATE SET p.subscription_status = $default_status
		SET p.name = $name, p.updated_at = $updated_at
		RETURN p.id AS id, p.name AS name, p.subscription_status AS subscription_status, p.updated_at AS updated_at
	`

	SetSubscriptionQuery = `
		MERGE (p:Profile {id: $id})
		SET p.subscription_status = $status, p.updated_at = $updated_at
		RETURN p.id AS id
	`
)
