package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"pivoLogAPI/internal/group"
)

type GroupService struct {
	db *pgxpool.Pool
}

func NewGroupService(db *pgxpool.Pool) *GroupService {
	return &GroupService{db: db}
}

// Create makes a new group with a fresh invite code and enrolls the
// creator as admin.
func (s *GroupService) Create(ctx context.Context, userID uuid.UUID, req *group.CreateRequest) (*group.Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("group name is required")
	}
	if len(name) > 100 {
		return nil, fmt.Errorf("group name too long")
	}

	code, err := generateInviteCode()
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	g := &group.Group{
		ID:          uuid.New(),
		Name:        name,
		Description: req.Description,
		InviteCode:  code,
		CreatedBy:   userID,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO groups (id, name, description, invite_code, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`, g.ID, g.Name, g.Description, g.InviteCode, g.CreatedBy).Scan(&g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO group_members (group_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, NOW())
	`, g.ID, userID, group.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to add creator to group: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit group: %w", err)
	}
	return g, nil
}

// Join enrolls the user in the group matching the invite code. Joining a
// group twice is a no-op.
func (s *GroupService) Join(ctx context.Context, userID uuid.UUID, inviteCode string) (*group.Group, error) {
	code := strings.ToUpper(strings.TrimSpace(inviteCode))
	if code == "" {
		return nil, fmt.Errorf("invite code is required")
	}

	g := &group.Group{}
	err := s.db.QueryRow(ctx, `
		SELECT id, name, description, invite_code, created_by, created_at
		FROM groups
		WHERE invite_code = $1
	`, code).Scan(&g.ID, &g.Name, &g.Description, &g.InviteCode, &g.CreatedBy, &g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid invite code")
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO group_members (group_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (group_id, user_id) DO NOTHING
	`, g.ID, userID, group.RoleMember)
	if err != nil {
		return nil, fmt.Errorf("failed to join group: %w", err)
	}
	return g, nil
}

// MyGroups lists the groups the user belongs to, newest membership first.
func (s *GroupService) MyGroups(ctx context.Context, userID uuid.UUID) ([]*group.Group, error) {
	query := `
	SELECT g.id, g.name, g.description, g.invite_code, g.created_by, g.created_at
	FROM groups g
	INNER JOIN group_members gm ON gm.group_id = g.id
	WHERE gm.user_id = $1
	ORDER BY gm.joined_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch groups: %w", err)
	}
	defer rows.Close()

	groups := []*group.Group{}
	for rows.Next() {
		g := &group.Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.InviteCode, &g.CreatedBy, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Members lists the group's roster. Visible only to members.
func (s *GroupService) Members(ctx context.Context, requesterID, groupID uuid.UUID) ([]*group.Member, error) {
	var isMember bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM group_members WHERE user_id = $1 AND group_id = $2)`,
		requesterID, groupID).Scan(&isMember)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return nil, ErrForbidden
	}

	query := `
	SELECT gm.user_id, u.name, gm.role, gm.joined_at
	FROM group_members gm
	INNER JOIN users u ON u.id = gm.user_id
	WHERE gm.group_id = $1
	ORDER BY gm.joined_at ASC
	`

	rows, err := s.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	defer rows.Close()

	members := []*group.Member{}
	for rows.Next() {
		m := &group.Member{}
		if err := rows.Scan(&m.UserID, &m.Name, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Leave removes the user from a group they belong to.
func (s *GroupService) Leave(ctx context.Context, userID, groupID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM group_members WHERE user_id = $1 AND group_id = $2`, userID, groupID)
	if err != nil {
		return fmt.Errorf("failed to leave group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("not a member of this group")
	}
	return nil
}

// Invite codes skip 0/O and 1/I so they survive being read aloud.
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateInviteCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf), nil
}
