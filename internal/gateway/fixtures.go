package gateway

import (
	"time"

	"github.com/shopspring/decimal"
)

// fixtureEpoch anchors fixture timestamps so sorting by updated_at is stable.
var fixtureEpoch = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

type productSeed struct {
	name     string
	category string
	stock    int64
	price    int64
	status   Status
	image    string
}

var productSeeds = []productSeed{
	{"Meja Makan Jati Solid", "Meja", 2, 3400000, StatusLowStock, "https://via.placeholder.com/50/8B4513/FFFFFF?text=Meja"},
	{"Ranjang Queen Minimalis", "Tempat Tidur", 4, 6700000, StatusLowStock, "https://via.placeholder.com/50/D2691E/FFFFFF?text=Bed"},
	{"Lemari Baju 2 Pintu", "Lemari", 8, 600000, StatusActive, "https://picsum.photos/400/300"},
	{"Kursi Kerja Ergonomis", "Kursi", 20, 300000, StatusActive, "https://picsum.photos/400/300"},
	{"Lemari Pakaian 3 Pintu", "Lemari", 15, 750000, StatusActive, "https://picsum.photos/400/300"},
	{"Rak Buku Dinding", "Rak", 29, 800000, StatusActive, "https://picsum.photos/400/300"},
	{"Meja Belajar Anak", "Meja", 12, 1150000, StatusActive, "https://picsum.photos/400/300"},
	{"Kursi Cafe Rotan", "Kursi", 16, 780000, StatusActive, "https://picsum.photos/400/300"},
	{"Bufet TV Skandinavia", "Bufet", 24, 2900000, StatusInactive, "https://picsum.photos/400/300"},
	{"Meja Kerja Industrial", "Meja", 12, 2350000, StatusInactive, "https://picsum.photos/400/300"},
	{"Sofa 3 Dudukan", "Sofa", 5, 4500000, StatusActive, "https://picsum.photos/400/300"},
	{"Nakas Laci Ganda", "Nakas", 18, 350000, StatusActive, "https://picsum.photos/400/300"},
	{"Meja Rias Cermin Bulat", "Meja", 3, 1250000, StatusLowStock, "/uploads/meja-rias.jpg"},
	{"Sofa Bed Lipat", "Sofa", 7, 2100000, StatusActive, "/placeholder.svg"},
}

// ProductFixtures returns the development product catalogue. Each call
// returns fresh values.
func ProductFixtures() []Product {
	out := make([]Product, 0, len(productSeeds))
	for i, s := range productSeeds {
		out = append(out, Product{
			ID:                int64(i + 1),
			Name:              s.name,
			Category:          s.category,
			Unit:              "Unit",
			Stock:             s.stock,
			LowStockThreshold: 5,
			Price:             decimal.NewFromInt(s.price),
			Status:            s.status,
			Image:             s.image,
			Rating:            4.5,
			UpdatedAt:         fixtureEpoch.Add(time.Duration(i) * time.Hour),
		})
	}
	return out
}

// Account is a development login.
type Account struct {
	UserID   int64
	Email    string
	Password string
}

// FixtureAccounts are the logins accepted by the mock strategies and the
// development server.
var FixtureAccounts = []Account{
	{UserID: 1, Email: "admin@mebel.id", Password: "admin123"},
	{UserID: 3, Email: "nurul.azizah@mebel.id", Password: "password123"},
}

type userSeed struct {
	name   string
	email  string
	phone  string
	role   string
	status Status
}

var userSeeds = []userSeed{
	{"Admin Mebel", "admin@mebel.id", "+6281200000001", RoleAdmin, StatusActive},
	{"Teguh Prakoso", "teguh.prakoso@mebel.id", "+6281288856837", RoleUser, StatusInactive},
	{"Nurul Azizah", "nurul.azizah@mebel.id", "+6281288856756", RoleUser, StatusActive},
	{"Lutfi Hidayat", "lutfi.hidayat@mebel.id", "+6281280026217", RoleUser, StatusActive},
	{"Sari Wulandari", "sari.wulandari@mebel.id", "+6281290012345", RoleUser, StatusActive},
	{"Bima Saputra", "bima.saputra@mebel.id", "+6281277712999", RoleUser, StatusInactive},
	{"Dewi Lestari", "dewi.lestari@mebel.id", "+6281266601234", RoleUser, StatusActive},
	{"Rizky Ramadhan", "rizky.ramadhan@mebel.id", "+6281255509876", RoleUser, StatusActive},
}

// UserFixtures returns the development user list.
func UserFixtures() []User {
	out := make([]User, 0, len(userSeeds))
	for i, s := range userSeeds {
		out = append(out, User{
			ID:        int64(i + 1),
			Name:      s.name,
			Email:     s.email,
			Phone:     s.phone,
			Role:      s.role,
			Status:    s.status,
			Avatar:    GeneratedAvatar(s.name),
			CreatedAt: fixtureEpoch.AddDate(0, 0, -i),
		})
	}
	return out
}
