package usuario

import "gorm.io/gorm"

type Repository interface {
	BuscarPorUsername(db *gorm.DB, username string) (*Usuario, error)
	BuscarPorID(db *gorm.DB, id uint) (*Usuario, error)
	// SalvarSenha cria o usuário ou troca a senha de um existente.
	SalvarSenha(db *gorm.DB, username, hash string) (*Usuario, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) BuscarPorUsername(db *gorm.DB, username string) (*Usuario, error) {
	var u Usuario
	if err := db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Usuario, error) {
	var u Usuario
	if err := db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repositoryImpl) SalvarSenha(db *gorm.DB, username, hash string) (*Usuario, error) {
	var u Usuario
	err := db.Where(Usuario{Username: username}).
		Assign(Usuario{Senha: hash}).
		FirstOrCreate(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}
